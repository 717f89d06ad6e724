package lending

import (
	"net/http"
	"strconv"

	"lendingapi/internal/httpx"
)

// timestampLayout is the format clients already parse.
const timestampLayout = "2006-01-02 15:04:05"

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type borrowReq struct {
	BookID     int64 `json:"bookId" validate:"required,gt=0"`
	BorrowerID int64 `json:"borrowerId" validate:"required,gt=0"`
}

// DTO is the wire form of a Record. Active keeps the stored encoding
// (false while the book is out); Status spells it out.
type DTO struct {
	ID           int64   `json:"id"`
	BookID       int64   `json:"bookId"`
	BookTitle    string  `json:"bookTitle"`
	BookAuthor   string  `json:"bookAuthor"`
	BorrowerID   int64   `json:"borrowerId"`
	BorrowerName string  `json:"borrowerName"`
	Active       bool    `json:"active"`
	Status       string  `json:"status"`
	BorrowDate   string  `json:"borrowDate"`
	ReturnDate   *string `json:"returnDate"`
}

func ToDTO(r Record) DTO {
	dto := DTO{
		ID:           r.ID,
		BookID:       r.Book.ID,
		BookTitle:    r.Book.Title,
		BookAuthor:   r.Book.Author,
		BorrowerID:   r.Borrower.ID,
		BorrowerName: r.Borrower.Name,
		Active:       r.Status.Active(),
		Status:       r.Status.String(),
		BorrowDate:   r.BorrowedAt.Format(timestampLayout),
	}
	if r.ReturnedAt != nil {
		returned := r.ReturnedAt.Format(timestampLayout)
		dto.ReturnDate = &returned
	}
	return dto
}

// Borrow handles POST /v1/book/borrow
// @Summary Borrow a book
// @Tags lending
// @Accept json
// @Produce json
// @Param request body borrowReq true "Borrow request"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /v1/book/borrow [post]
func (h *HTTPHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	var req borrowReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if fields := httpx.ValidateStruct(req); fields != nil {
		httpx.JSONValidationError(w, r, fields)
		return
	}

	rec, err := h.service.Borrow(r.Context(), req.BookID, req.BorrowerID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, "Book borrowed successfully", ToDTO(rec))
}

// Return handles POST /v1/book/{bookId}/return?borrowerId=
// @Summary Return a borrowed book
// @Tags lending
// @Produce json
// @Param bookId path int true "Book id"
// @Param borrowerId query int true "Borrower id"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Router /v1/book/{bookId}/return [post]
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	fields := map[string]string{}
	bookID, ok := parseID(r.PathValue("bookId"))
	if !ok {
		fields["bookId"] = "bookId must be a positive integer"
	}
	borrowerID, ok := parseID(r.URL.Query().Get("borrowerId"))
	if !ok {
		fields["borrowerId"] = "borrowerId must be a positive integer"
	}
	if len(fields) > 0 {
		httpx.JSONValidationError(w, r, fields)
		return
	}

	rec, err := h.service.Return(r.Context(), bookID, borrowerID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, "Book returned successfully", ToDTO(rec))
}

// History handles GET /v1/book/{bookId}/history
// @Summary Lending history of a book copy
// @Tags lending
// @Produce json
// @Param bookId path int true "Book id"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /v1/book/{bookId}/history [get]
func (h *HTTPHandler) History(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseID(r.PathValue("bookId"))
	if !ok {
		httpx.JSONValidationError(w, r, map[string]string{"bookId": "bookId must be a positive integer"})
		return
	}

	records, err := h.service.History(r.Context(), bookID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	out := make([]DTO, 0, len(records))
	for _, rec := range records {
		out = append(out, ToDTO(rec))
	}
	httpx.JSONSuccess(w, r, "Lending history retrieved successfully", out)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
