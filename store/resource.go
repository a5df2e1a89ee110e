package store

import (
	"context"

	"github.com/codesechub/hubclient/api"
)

// ResourceStore caches shared resource listings.
type ResourceStore struct {
	Collection[api.Resource]
	client *api.Resources
}

// NewResourceStore creates the resource store over the resources API.
func NewResourceStore(client *api.Resources) *ResourceStore {
	return &ResourceStore{client: client}
}

// FetchResources loads a page of resources into the cache.
func (s *ResourceStore) FetchResources(ctx context.Context, p api.ResourceListParams) ([]api.Resource, error) {
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

// FetchResource loads one resource into the detail slot.
func (s *ResourceStore) FetchResource(ctx context.Context, id int) (api.Resource, error) {
	s.begin()
	resource, err := s.client.Get(ctx, id)
	if err != nil {
		s.fail(err)
		return api.Resource{}, err
	}
	s.setCurrent(resource)
	return resource, nil
}

// CreateResource submits a resource and prepends it to the cached list.
func (s *ResourceStore) CreateResource(ctx context.Context, input api.ResourceInput) (api.Resource, error) {
	s.begin()
	resource, err := s.client.Create(ctx, input)
	if err != nil {
		s.fail(err)
		return api.Resource{}, err
	}
	s.prepend(resource)
	return resource, nil
}

// UpdateResource edits a resource and swaps the cached copy in place.
func (s *ResourceStore) UpdateResource(ctx context.Context, id int, input api.ResourceInput) (api.Resource, error) {
	s.begin()
	resource, err := s.client.Update(ctx, id, input)
	if err != nil {
		s.fail(err)
		return api.Resource{}, err
	}
	s.replaceByID(resource)
	return resource, nil
}

// DeleteResource removes a resource remotely and from the cache.
func (s *ResourceStore) DeleteResource(ctx context.Context, id int) error {
	s.begin()
	if err := s.client.Delete(ctx, id); err != nil {
		s.fail(err)
		return err
	}
	s.removeByID(id)
	return nil
}
