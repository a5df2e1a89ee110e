package store

import (
	"context"

	"github.com/codesechub/hubclient/api"
)

// BlogStore caches blog articles and categories.
type BlogStore struct {
	Collection[api.Article]
	client *api.Blog

	categories []api.Category
}

// NewBlogStore creates the blog store over the blog API.
func NewBlogStore(client *api.Blog) *BlogStore {
	return &BlogStore{client: client}
}

// FetchArticles loads a page of articles into the cache.
func (s *BlogStore) FetchArticles(ctx context.Context, p api.ArticleListParams) ([]api.Article, error) {
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

// FetchArticle loads one article by slug into the detail slot.
func (s *BlogStore) FetchArticle(ctx context.Context, slug string) (api.Article, error) {
	s.begin()
	article, err := s.client.Get(ctx, slug)
	if err != nil {
		s.fail(err)
		return api.Article{}, err
	}
	s.setCurrent(article)
	return article, nil
}

// CreateArticle publishes an article and prepends it to the cached list.
func (s *BlogStore) CreateArticle(ctx context.Context, input api.ArticleInput) (api.Article, error) {
	s.begin()
	article, err := s.client.Create(ctx, input)
	if err != nil {
		s.fail(err)
		return api.Article{}, err
	}
	s.prepend(article)
	return article, nil
}

// UpdateArticle edits an article and swaps the cached copy in place.
func (s *BlogStore) UpdateArticle(ctx context.Context, id int, input api.ArticleInput) (api.Article, error) {
	s.begin()
	article, err := s.client.Update(ctx, id, input)
	if err != nil {
		s.fail(err)
		return api.Article{}, err
	}
	s.replaceByID(article)
	return article, nil
}

// DeleteArticle removes an article remotely and from the cache.
func (s *BlogStore) DeleteArticle(ctx context.Context, id int) error {
	s.begin()
	if err := s.client.Delete(ctx, id); err != nil {
		s.fail(err)
		return err
	}
	s.removeByID(id)
	return nil
}

// FetchCategories loads the category list. The result is cached and
// returned as-is on later calls until Reset.
func (s *BlogStore) FetchCategories(ctx context.Context) ([]api.Category, error) {
	s.mu.Lock()
	if s.categories != nil {
		cached := s.categories
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	s.begin()
	categories, err := s.client.Categories(ctx)
	if err != nil {
		s.fail(err)
		return nil, err
	}

	s.mu.Lock()
	s.categories = categories
	s.loading = false
	s.mu.Unlock()
	return categories, nil
}

// Categories returns the cached category list, if loaded.
func (s *BlogStore) Categories() []api.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories
}

// Reset drops all cached blog state.
func (s *BlogStore) Reset() {
	s.Collection.Reset()
	s.mu.Lock()
	s.categories = nil
	s.mu.Unlock()
}
