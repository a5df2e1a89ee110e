package store

import (
	"context"

	"github.com/codesechub/hubclient/api"
)

// ForumStore caches forum threads and keeps the open thread's comment
// list in sync with replies posted through it.
type ForumStore struct {
	Collection[api.Post]
	client *api.Forum
}

// NewForumStore creates the forum store over the forum API.
func NewForumStore(client *api.Forum) *ForumStore {
	return &ForumStore{client: client}
}

// FetchPosts loads a page of threads into the cache.
func (s *ForumStore) FetchPosts(ctx context.Context, p api.PostListParams) ([]api.Post, error) {
	s.begin()
	p.PageSize = s.effectivePageSize(p.PageSize)
	resp, err := s.client.List(ctx, p)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.replaceList(resp.Results, resp.Count, p.Page, p.PageSize)
	return resp.Results, nil
}

// FetchPost loads one thread, with comments, into the detail slot.
func (s *ForumStore) FetchPost(ctx context.Context, id int) (api.Post, error) {
	s.begin()
	post, err := s.client.Get(ctx, id)
	if err != nil {
		s.fail(err)
		return api.Post{}, err
	}
	s.setCurrent(post)
	return post, nil
}

// CreatePost opens a thread and prepends it to the cached list.
func (s *ForumStore) CreatePost(ctx context.Context, input api.PostInput) (api.Post, error) {
	s.begin()
	post, err := s.client.Create(ctx, input)
	if err != nil {
		s.fail(err)
		return api.Post{}, err
	}
	s.prepend(post)
	return post, nil
}

// UpdatePost edits a thread and swaps the cached copy in place.
func (s *ForumStore) UpdatePost(ctx context.Context, id int, input api.PostInput) (api.Post, error) {
	s.begin()
	post, err := s.client.Update(ctx, id, input)
	if err != nil {
		s.fail(err)
		return api.Post{}, err
	}
	s.replaceByID(post)
	return post, nil
}

// DeletePost removes a thread remotely and from the cache.
func (s *ForumStore) DeletePost(ctx context.Context, id int) error {
	s.begin()
	if err := s.client.Delete(ctx, id); err != nil {
		s.fail(err)
		return err
	}
	s.removeByID(id)
	return nil
}

// CreateComment posts a reply. When the reply targets the thread open in
// the detail slot, the cached thread gains the comment and its reply
// count without a re-fetch; replies to other threads leave the cache
// untouched.
func (s *ForumStore) CreateComment(ctx context.Context, input api.CommentInput) (api.Comment, error) {
	s.begin()
	comment, err := s.client.CreateComment(ctx, input)
	if err != nil {
		s.fail(err)
		return api.Comment{}, err
	}

	s.mu.Lock()
	if s.current != nil && input.Post == s.current.ID {
		s.current.Comments = append(s.current.Comments, comment)
		s.current.ReplyCount++
	}
	s.loading = false
	s.mu.Unlock()
	return comment, nil
}
