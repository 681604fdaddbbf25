package apiclient

import (
	"context"
	"net/http"
)

type requestOptions struct {
	requiresAuth bool
	skipRefresh  bool
	bearer       string
	headers      map[string]string
}

// refreshable reports whether a 401 may be recovered by refreshing the
// stored credential. An explicit bearer is not the stored one, so a refresh
// would not help it.
func (ro requestOptions) refreshable() bool {
	return !ro.skipRefresh && ro.bearer == ""
}

type RequestOption func(*requestOptions)

// WithoutAuth sends the call without the stored credential.
func WithoutAuth() RequestOption {
	return func(ro *requestOptions) {
		ro.requiresAuth = false
	}
}

// SkipRefresh surfaces a 401 as is instead of refreshing and retrying.
func SkipRefresh() RequestOption {
	return func(ro *requestOptions) {
		ro.skipRefresh = true
	}
}

// WithBearer presents token instead of the stored credential, e.g. while
// fetching the profile of a user who has just logged in.
func WithBearer(token string) RequestOption {
	return func(ro *requestOptions) {
		ro.bearer = token
	}
}

func WithHeader(key, value string) RequestOption {
	return func(ro *requestOptions) {
		if ro.headers == nil {
			ro.headers = make(map[string]string)
		}
		ro.headers[key] = value
	}
}

// Get decodes the JSON response of a GET into a T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, nil, &out, opts...)
	return out, err
}

func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, body, &out, opts...)
	return out, err
}

func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, path, body, &out, opts...)
	return out, err
}

// Delete discards any response body.
func Delete(ctx context.Context, c *Client, path string, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, opts...)
}
