package book

import (
	"net/http"

	"lendingapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type registerRequest struct {
	ISBN   string `json:"isbnNumber" validate:"required,notblank,max=32"`
	Title  string `json:"title" validate:"required,notblank,max=255"`
	Author string `json:"author" validate:"required,notblank,max=255"`
}

// DTO is the wire form of a Book.
type DTO struct {
	ID     int64  `json:"id"`
	ISBN   string `json:"isbnNumber"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

func ToDTO(b Book) DTO {
	return DTO{ID: b.ID, ISBN: b.ISBN, Title: b.Title, Author: b.Author}
}

// Register handles POST /v1/book/register
// @Summary Register a book copy
// @Tags books
// @Accept json
// @Produce json
// @Param request body registerRequest true "Book registration request"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Router /v1/book/register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if fields := httpx.ValidateStruct(req); fields != nil {
		httpx.JSONValidationError(w, r, fields)
		return
	}

	created, err := h.service.Register(r.Context(), req.ISBN, req.Title, req.Author)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, "Book registered successfully", ToDTO(created))
}

// GetAll handles GET /v1/book/getall
// @Summary List every book copy
// @Tags books
// @Produce json
// @Success 200 {object} httpx.Response
// @Failure 500 {object} httpx.Response
// @Router /v1/book/getall [get]
func (h *HTTPHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	out := make([]DTO, 0, len(books))
	for _, b := range books {
		out = append(out, ToDTO(b))
	}
	httpx.JSONSuccess(w, r, "Books retrieved successfully", out)
}
