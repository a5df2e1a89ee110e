package api

import (
	"context"
	"fmt"
	"time"

	"github.com/codesechub/hubclient/apiclient"
)

// Resource is a shared resource listing (tool, article link, download).
type Resource struct {
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	Type          string    `json:"type"`
	Tags          []string  `json:"tags"`
	Submitter     Author    `json:"submitter"`
	ID            int       `json:"id"`
	DownloadCount int       `json:"download_count"`
}

// EntityID returns the resource's identifier for cache bookkeeping.
func (r Resource) EntityID() int { return r.ID }

// ResourceInput is the create/update body for resources.
type ResourceInput struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Type        string   `json:"type,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ResourceListParams filter and paginate the resource list.
type ResourceListParams struct {
	Type     string
	Page     int
	PageSize int
}

// Resources wraps the resource endpoints.
type Resources struct {
	client *apiclient.Client
}

// NewResources creates the resources API module.
func NewResources(client *apiclient.Client) *Resources {
	return &Resources{client: client}
}

// List fetches a page of resources.
func (r *Resources) List(ctx context.Context, p ResourceListParams) (ListResponse[Resource], error) {
	params := pageValues(p.Page, p.PageSize)
	if p.Type != "" {
		params.Set("type", p.Type)
	}
	return apiclient.Get[ListResponse[Resource]](ctx, r.client, "/resources/resources/", params)
}

// Get fetches a single resource.
func (r *Resources) Get(ctx context.Context, id int) (Resource, error) {
	return apiclient.Get[Resource](ctx, r.client, fmt.Sprintf("/resources/resources/%d/", id), nil)
}

// Create submits a new resource.
func (r *Resources) Create(ctx context.Context, input ResourceInput) (Resource, error) {
	return apiclient.Post[Resource](ctx, r.client, "/resources/resources/create/", input)
}

// Update edits an existing resource.
func (r *Resources) Update(ctx context.Context, id int, input ResourceInput) (Resource, error) {
	return apiclient.Put[Resource](ctx, r.client, fmt.Sprintf("/resources/resources/%d/", id), input)
}

// Delete removes a resource.
func (r *Resources) Delete(ctx context.Context, id int) error {
	return apiclient.Delete(ctx, r.client, fmt.Sprintf("/resources/resources/%d/", id))
}
