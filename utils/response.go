package utils

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type APIResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// Pagination is the envelope block for paginated listings.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	TotalPages int64 `json:"total_pages"`
}

// NewPagination computes page counts for a listing response.
func NewPagination(totalItems int64, page, limit int) *Pagination {
	totalPages := totalItems / int64(limit)
	if totalItems%int64(limit) != 0 {
		totalPages++
	}
	return &Pagination{Page: page, Limit: limit, TotalItems: totalItems, TotalPages: totalPages}
}

// PageParams reads page/limit query parameters with sane defaults.
func PageParams(r *http.Request) (page, limit, offset int) {
	page = queryInt(r, "page", 1)
	limit = queryInt(r, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
