package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campuslib/campuslib/internal/data"
	"github.com/campuslib/campuslib/internal/domain/model"
	"github.com/campuslib/campuslib/internal/mocks"
	"github.com/campuslib/campuslib/internal/service"
)

func newBookHandlers(t *testing.T) (*BookHandlers, *mocks.MockBookRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	books := mocks.NewMockBookRepository(ctrl)
	svc := service.NewCatalogService(service.CatalogServiceOptions{Books: books})
	return &BookHandlers{Svc: svc}, books
}

func TestBookCreate(t *testing.T) {
	h, books := newBookHandlers(t)

	books.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req *model.CreateBookRequest) (*model.Book, error) {
			return &model.Book{
				ID:              "book-1",
				Title:           req.Title,
				Author:          req.Author,
				ISBN:            req.ISBN,
				Category:        req.Category,
				TotalCopies:     req.TotalCopies,
				AvailableCopies: req.TotalCopies,
			}, nil
		})

	body, err := json.Marshal(model.CreateBookRequest{
		Title:       "The Go Programming Language",
		Author:      "Donovan & Kernighan",
		ISBN:        "978-0134190440",
		Category:    "Computing",
		TotalCopies: 3,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var created model.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "book-1", created.ID)
	assert.Equal(t, 3, created.AvailableCopies)
}

func TestBookCreate_DuplicateISBN(t *testing.T) {
	h, books := newBookHandlers(t)

	books.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, data.ErrISBNExists)

	body, err := json.Marshal(model.CreateBookRequest{
		Title:       "Duplicate",
		Author:      "Someone",
		ISBN:        "978-0134190440",
		Category:    "Computing",
		TotalCopies: 1,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "isbn_conflict")
}

func TestBookCreate_ValidationError(t *testing.T) {
	h, _ := newBookHandlers(t)

	body, err := json.Marshal(model.CreateBookRequest{Author: "No Title", TotalCopies: 1})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")
}

func TestBookCreate_InvalidJSON(t *testing.T) {
	h, _ := newBookHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_json")
}

func TestBookList_QueryParams(t *testing.T) {
	h, books := newBookHandlers(t)

	books.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, opts model.BooksListOptions) ([]*model.Book, error) {
			assert.Equal(t, 10, opts.Limit)
			assert.Equal(t, 20, opts.Offset)
			require.NotNil(t, opts.Q)
			assert.Equal(t, "compilers", *opts.Q)
			assert.True(t, opts.AvailableOnly)
			return []*model.Book{{ID: "book-1"}}, nil
		})

	req := httptest.NewRequest(http.MethodGet, "/api/books?q=compilers&available=true&limit=10&offset=20", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBookGetByID_NotFound(t *testing.T) {
	h, books := newBookHandlers(t)

	books.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, data.ErrBookNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/books/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	h.GetByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookDelete(t *testing.T) {
	h, books := newBookHandlers(t)

	books.EXPECT().Delete(gomock.Any(), "book-1").Return(true, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/books/book-1", nil)
	req.SetPathValue("id", "book-1")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBookDelete_NotFound(t *testing.T) {
	h, books := newBookHandlers(t)

	books.EXPECT().Delete(gomock.Any(), "missing").Return(false, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/books/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
