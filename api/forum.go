package api

import (
	"context"
	"fmt"
	"time"

	"github.com/codesechub/hubclient/apiclient"
)

// Comment is a reply within a forum thread.
type Comment struct {
	CreatedAt time.Time `json:"created_at"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	ID        int       `json:"id"`
}

// Post is a forum thread. Comments are populated only on the detail endpoint.
type Post struct {
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Comments   []Comment `json:"comments,omitempty"`
	Author     Author    `json:"author"`
	ID         int       `json:"id"`
	ViewCount  int       `json:"view_count"`
	ReplyCount int       `json:"reply_count"`
}

// EntityID returns the post's identifier for cache bookkeeping.
func (p Post) EntityID() int { return p.ID }

// PostInput is the create/update body for forum threads.
type PostInput struct {
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// CommentInput is the body for creating a comment. Exactly one of Post or
// Article identifies the commented entity; Parent threads the reply.
type CommentInput struct {
	Content string `json:"content"`
	Post    int    `json:"post,omitempty"`
	Article int    `json:"article,omitempty"`
	Parent  int    `json:"parent,omitempty"`
}

// PostListParams paginate the thread list.
type PostListParams struct {
	Page     int
	PageSize int
}

// Forum wraps the forum endpoints.
type Forum struct {
	client *apiclient.Client
}

// NewForum creates the forum API module.
func NewForum(client *apiclient.Client) *Forum {
	return &Forum{client: client}
}

// List fetches a page of threads.
func (f *Forum) List(ctx context.Context, p PostListParams) (ListResponse[Post], error) {
	return apiclient.Get[ListResponse[Post]](ctx, f.client, "/forum/posts/", pageValues(p.Page, p.PageSize))
}

// Get fetches a single thread with its comments.
func (f *Forum) Get(ctx context.Context, id int) (Post, error) {
	return apiclient.Get[Post](ctx, f.client, fmt.Sprintf("/forum/posts/%d/", id), nil)
}

// Create opens a new thread.
func (f *Forum) Create(ctx context.Context, input PostInput) (Post, error) {
	return apiclient.Post[Post](ctx, f.client, "/forum/posts/create/", input)
}

// Update edits an existing thread.
func (f *Forum) Update(ctx context.Context, id int, input PostInput) (Post, error) {
	return apiclient.Put[Post](ctx, f.client, fmt.Sprintf("/forum/posts/%d/", id), input)
}

// Delete removes a thread.
func (f *Forum) Delete(ctx context.Context, id int) error {
	return apiclient.Delete(ctx, f.client, fmt.Sprintf("/forum/posts/%d/", id))
}

// CreateComment posts a reply.
func (f *Forum) CreateComment(ctx context.Context, input CommentInput) (Comment, error) {
	return apiclient.Post[Comment](ctx, f.client, "/forum/comments/create/", input)
}
