package aml

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/jrsteele09/regulus-console/api"
	"github.com/jrsteele09/regulus-console/internal/errors"
)

// Client is the part of the request pipeline the collaborators use.
type Client interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Download(ctx context.Context, req api.Request) ([]byte, error)
}

var _ Client = (*api.Client)(nil)

// Service exposes the monitoring API's listing, detail and decision endpoints
// as typed calls. Every failure is the pipeline's classified error.
type Service struct {
	api Client
}

func NewService(client Client) *Service {
	return &Service{api: client}
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Pagination selects a page. Zero values leave the server defaults.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) apply(values url.Values) {
	setInt(values, "page", p.Page)
	setInt(values, "page_size", p.PageSize)
}

func setInt(values url.Values, key string, v int) {
	if v > 0 {
		values.Set(key, strconv.Itoa(v))
	}
}

func setString(values url.Values, key, v string) {
	if v != "" {
		values.Set(key, v)
	}
}

func withQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}

func get[T any](ctx context.Context, s *Service, path string) (T, error) {
	raw, err := s.api.Get(ctx, path)
	if err != nil {
		var zero T
		return zero, err
	}
	return api.Unwrap[T](raw)
}

func post[T any](ctx context.Context, s *Service, path string, body any) (T, error) {
	raw, err := s.api.Post(ctx, path, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return api.Unwrap[T](raw)
}

func requireID(kind, id string) error {
	if id == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "%s id is required", kind)
	}
	return nil
}
