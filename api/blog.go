package api

import (
	"context"
	"fmt"
	"time"

	"github.com/codesechub/hubclient/apiclient"
)

// Category is a blog category.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	ID   int    `json:"id"`
}

// Article is a published blog article.
type Article struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary"`
	Status    string    `json:"status"`
	Tags      []string  `json:"tags"`
	Author    Author    `json:"author"`
	Category  Category  `json:"category"`
	ID        int       `json:"id"`
	ViewCount int       `json:"view_count"`
	LikeCount int       `json:"like_count"`
}

// EntityID returns the article's identifier for cache bookkeeping.
func (a Article) EntityID() int { return a.ID }

// ArticleInput is the create/update body for articles.
// For updates, zero fields are omitted so the edit stays partial.
type ArticleInput struct {
	Title    string   `json:"title,omitempty"`
	Content  string   `json:"content,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Status   string   `json:"status,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Category int      `json:"category,omitempty"`
}

// ArticleListParams filter and paginate the article list.
type ArticleListParams struct {
	Category string
	Page     int
	PageSize int
}

// Blog wraps the blog endpoints.
type Blog struct {
	client *apiclient.Client
}

// NewBlog creates the blog API module.
func NewBlog(client *apiclient.Client) *Blog {
	return &Blog{client: client}
}

// List fetches a page of articles.
func (b *Blog) List(ctx context.Context, p ArticleListParams) (ListResponse[Article], error) {
	params := pageValues(p.Page, p.PageSize)
	if p.Category != "" {
		params.Set("category", p.Category)
	}
	return apiclient.Get[ListResponse[Article]](ctx, b.client, "/blog/articles/", params)
}

// Get fetches a single article by slug.
func (b *Blog) Get(ctx context.Context, slug string) (Article, error) {
	return apiclient.Get[Article](ctx, b.client, fmt.Sprintf("/blog/articles/%s/", slug), nil)
}

// Create publishes a new article.
func (b *Blog) Create(ctx context.Context, input ArticleInput) (Article, error) {
	return apiclient.Post[Article](ctx, b.client, "/blog/articles/create/", input)
}

// Update edits an existing article.
func (b *Blog) Update(ctx context.Context, id int, input ArticleInput) (Article, error) {
	return apiclient.Put[Article](ctx, b.client, fmt.Sprintf("/blog/articles/%d/", id), input)
}

// Delete removes an article.
func (b *Blog) Delete(ctx context.Context, id int) error {
	return apiclient.Delete(ctx, b.client, fmt.Sprintf("/blog/articles/%d/", id))
}

// Categories fetches all blog categories.
func (b *Blog) Categories(ctx context.Context) ([]Category, error) {
	return apiclient.Get[[]Category](ctx, b.client, "/blog/categories/", nil)
}
