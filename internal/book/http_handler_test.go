package book

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

func TestHTTPHandler_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := NewMockRepository(ctrl)
		handler := NewHTTPHandler(NewService(repo, passThroughTx(ctrl)))

		repo.EXPECT().LockISBN(gomock.Any(), "111").Return(nil)
		repo.EXPECT().FindFirstByISBN(gomock.Any(), "111").Return(Book{}, ErrNotFound)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *Book) error {
			b.ID = 1
			return nil
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/book/register",
			strings.NewReader(`{"isbnNumber":"111","title":"T","author":"A"}`))

		handler.Register(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)
		assert.Equal(t, "Book registered successfully", env.Message)
		assert.JSONEq(t, `{"id":1,"isbnNumber":"111","title":"T","author":"A"}`, string(env.Data))
	})

	t.Run("validation failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		handler := NewHTTPHandler(NewService(NewMockRepository(ctrl), NewMockTransactor(ctrl)))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/book/register",
			strings.NewReader(`{"isbnNumber":"","title":"  ","author":"A"}`))

		handler.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.JSONEq(t, `{"isbnNumber":"isbnNumber must not be empty","title":"title must not be empty"}`, string(env.Data))
	})

	t.Run("conflicting catalog data", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := NewMockRepository(ctrl)
		handler := NewHTTPHandler(NewService(repo, passThroughTx(ctrl)))

		repo.EXPECT().LockISBN(gomock.Any(), "111").Return(nil)
		repo.EXPECT().FindFirstByISBN(gomock.Any(), "111").Return(Book{ID: 1, ISBN: "111", Title: "T", Author: "A"}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/book/register",
			strings.NewReader(`{"isbnNumber":"111","title":"Other","author":"A"}`))

		handler.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "CONFLICTING_CATALOG_DATA", env.Code)
		assert.Contains(t, env.Message, "same title")
	})
}

func TestHTTPHandler_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(repo, NewMockTransactor(ctrl)))

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any()).Return([]Book{{ID: 1, ISBN: "123", Title: "Test", Author: "A"}}, nil)

		w := httptest.NewRecorder()
		handler.GetAll(w, httptest.NewRequest(http.MethodGet, "/v1/book/getall", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "Books retrieved successfully", env.Message)
		assert.JSONEq(t, `[{"id":1,"isbnNumber":"123","title":"Test","author":"A"}]`, string(env.Data))
	})

	t.Run("empty catalog", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any()).Return([]Book{}, nil)

		w := httptest.NewRecorder()
		handler.GetAll(w, httptest.NewRequest(http.MethodGet, "/v1/book/getall", nil))

		env := decodeEnvelope(t, w)
		assert.JSONEq(t, `[]`, string(env.Data))
	})

	t.Run("error", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any()).Return(nil, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		handler.GetAll(w, httptest.NewRequest(http.MethodGet, "/v1/book/getall", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
