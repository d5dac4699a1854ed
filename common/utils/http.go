package utils

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// Page is a validated page/limit pair read from the query string.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// ParsePage reads ?page= and ?limit=. Missing or out of range values fall back
// to page 1 and ten rows.
func ParsePage(r *http.Request) Page {
	q := r.URL.Query()
	p := Page{Number: 1, Limit: defaultPerPage}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.Number = n
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= maxPerPage {
		p.Limit = l
	}
	return p
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	write(w, statusCode, models.BaseResponse{Data: data})
}

// WriteMessage wraps a plain status line, e.g. "cancel requested".
func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	write(w, statusCode, models.BaseResponse{Data: message})
}

func WriteError(w http.ResponseWriter, statusCode int, errorMessage string) {
	write(w, statusCode, models.ErrorResponse{
		Error: http.StatusText(statusCode),
		Msg:   errorMessage,
	})
}

// WritePagination writes one page of rows with its meta block.
func WritePagination(w http.ResponseWriter, statusCode int, data any, page Page, total int64) {
	limit := int64(max(page.Limit, 1))
	write(w, statusCode, models.BasePaginationResponse{
		Data: data,
		Meta: models.MetaResponse{
			CurrentPage: int64(page.Number),
			LastPage:    (total + limit - 1) / limit,
			PerPage:     limit,
			Total:       total,
		},
	})
}

func write(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
