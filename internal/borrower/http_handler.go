package borrower

import (
	"net/http"
	"strconv"
	"strings"

	"lendingapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type registerReq struct {
	Name  string `json:"name" validate:"required,notblank,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

type DTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func ToDTO(b Borrower) DTO {
	return DTO{ID: b.ID, Name: b.Name, Email: b.Email}
}

// Register handles POST /v1/borrower/register
// @Summary Register a borrower
// @Tags borrowers
// @Accept json
// @Produce json
// @Param request body registerReq true "Registration request"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /v1/borrower/register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if fields := httpx.ValidateStruct(req); fields != nil {
		httpx.JSONValidationError(w, r, fields)
		return
	}

	created, err := h.service.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, "Borrower registered successfully", ToDTO(created))
}

// Get handles GET /v1/borrower/{borrowerId}
// @Summary Get a borrower
// @Tags borrowers
// @Produce json
// @Param borrowerId path int true "Borrower id"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /v1/borrower/{borrowerId} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("borrowerId"), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONValidationError(w, r, map[string]string{"borrowerId": "borrowerId must be a positive integer"})
		return
	}

	b, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, "Borrower retrieved successfully", ToDTO(b))
}
