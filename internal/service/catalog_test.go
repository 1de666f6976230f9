package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campuslib/campuslib/internal/domain/model"
	"github.com/campuslib/campuslib/internal/mocks"
)

func newCatalogService(t *testing.T) (*mocks.MockBookRepository, *CatalogService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	books := mocks.NewMockBookRepository(ctrl)
	return books, NewCatalogService(CatalogServiceOptions{Books: books})
}

func TestCatalogService_Create_Success(t *testing.T) {
	t.Parallel()
	books, svc := newCatalogService(t)
	ctx := context.Background()

	req := &model.CreateBookRequest{
		Title: "The Go Programming Language", Author: "Donovan & Kernighan",
		ISBN: "9780134190440", Category: "Computing", TotalCopies: 3,
	}
	books.EXPECT().Create(ctx, req).Return(&model.Book{ID: "book-1", Title: req.Title}, nil)

	book, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "book-1", book.ID)
}

func TestCatalogService_Create_InvalidRequest(t *testing.T) {
	t.Parallel()
	_, svc := newCatalogService(t)

	_, err := svc.Create(context.Background(), &model.CreateBookRequest{Title: ""})
	require.Error(t, err)
}

func TestCatalogService_List_NormalizesOptions(t *testing.T) {
	t.Parallel()
	books, svc := newCatalogService(t)
	ctx := context.Background()

	books.EXPECT().
		List(ctx, model.BooksListOptions{Limit: 50, Offset: 0}).
		Return([]*model.Book{}, nil)

	_, err := svc.List(ctx, model.BooksListOptions{Limit: -1, Offset: -5})
	require.NoError(t, err)
}

func TestCatalogService_Delete(t *testing.T) {
	t.Parallel()
	books, svc := newCatalogService(t)
	ctx := context.Background()

	books.EXPECT().Delete(ctx, "book-1").Return(true, nil)

	ok, err := svc.Delete(ctx, "book-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
