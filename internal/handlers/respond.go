package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultPageSize = 10
	maxPageSize     = 1000
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// PageResponse is the envelope for paginated list endpoints. Next and
// Previous are absolute page URLs, null at the edges of the result set.
type PageResponse struct {
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Count    int         `json:"count"`
	Results  interface{} `json:"results"`
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

type pageParams struct {
	Page     int
	PageSize int
}

func (p pageParams) Limit() int  { return p.PageSize }
func (p pageParams) Offset() int { return (p.Page - 1) * p.PageSize }

// parsePageParams reads page and page_size from the query string, applying
// the default and cap. Invalid values fall back rather than erroring.
func parsePageParams(r *http.Request) pageParams {
	params := pageParams{Page: 1, PageSize: defaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			params.Page = page
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			if size > maxPageSize {
				size = maxPageSize
			}
			params.PageSize = size
		}
	}

	return params
}

// newPageResponse builds the envelope for one page of results. total is the
// full match count; results holds just the current page.
func newPageResponse(r *http.Request, params pageParams, total int, results interface{}) PageResponse {
	response := PageResponse{Count: total, Results: results}

	if params.Offset()+params.PageSize < total {
		response.Next = pageURL(r, params, params.Page+1)
	}
	if params.Page > 1 {
		response.Previous = pageURL(r, params, params.Page-1)
	}

	return response
}

func pageURL(r *http.Request, params pageParams, page int) *string {
	u := *r.URL
	query := u.Query()
	query.Set("page", strconv.Itoa(page))
	if params.PageSize != defaultPageSize {
		query.Set("page_size", strconv.Itoa(params.PageSize))
	}
	u.RawQuery = query.Encode()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	full := fmt.Sprintf("%s://%s%s", scheme, r.Host, (&url.URL{Path: u.Path, RawQuery: u.RawQuery}).RequestURI())
	return &full
}
