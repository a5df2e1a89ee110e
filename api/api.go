// Package api contains the typed endpoint wrappers for every domain of the
// platform (auth, blog, forum, resources). Each function maps to exactly one
// REST endpoint and carries no logic beyond path and parameter construction;
// transport concerns live in package apiclient.
package api

import (
	"net/url"
	"strconv"
)

// Author identifies the user who created an entity.
type Author struct {
	Username string `json:"username"`
	ID       int    `json:"id"`
}

// ListResponse is the paginated list body returned by all list endpoints.
type ListResponse[T any] struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
	Count    int     `json:"count"`
}

// pageValues encodes the shared pagination query parameters.
func pageValues(page, pageSize int) url.Values {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		params.Set("page_size", strconv.Itoa(pageSize))
	}
	return params
}
