package pagination

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/JaimeStill/promptchan/pkg/validation"
)

// PageRequest represents a client request for a window of ordered results.
type PageRequest struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Validate rejects requests that cannot be satisfied by clamping.
func (r PageRequest) Validate() error {
	if r.Skip < 0 {
		return fmt.Errorf("%w: skip must be zero or greater", validation.ErrInvalid)
	}
	return nil
}

// Normalize clamps Limit to [0, cfg.MaxLimit] and Skip to zero or greater.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Skip < 0 {
		r.Skip = 0
	}
	if r.Limit < 0 {
		r.Limit = 0
	}
	if r.Limit > cfg.MaxLimit {
		r.Limit = cfg.MaxLimit
	}
}

// PageRequestFromQuery parses the skip and limit query parameters.
// A missing limit takes cfg.DefaultLimit. Non-integer values and a negative
// skip fail with validation.ErrInvalid; the limit is clamped.
func PageRequestFromQuery(values url.Values, cfg Config) (PageRequest, error) {
	req := PageRequest{Limit: cfg.DefaultLimit}

	if s := values.Get("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return PageRequest{}, fmt.Errorf("%w: skip must be an integer", validation.ErrInvalid)
		}
		req.Skip = n
	}

	if l := values.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			return PageRequest{}, fmt.Errorf("%w: limit must be an integer", validation.ErrInvalid)
		}
		req.Limit = n
	}

	if err := req.Validate(); err != nil {
		return PageRequest{}, err
	}

	req.Normalize(cfg)
	return req, nil
}

// PageResult holds a window of data along with the total number of eligible rows.
type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// NewPageResult creates a PageResult, replacing a nil slice with an empty one.
func NewPageResult[T any](items []T, total int, page PageRequest) PageResult[T] {
	if items == nil {
		items = []T{}
	}

	return PageResult[T]{
		Items: items,
		Total: total,
		Skip:  page.Skip,
		Limit: page.Limit,
	}
}
