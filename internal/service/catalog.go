package service

import (
	"context"
	"fmt"

	"github.com/campuslib/campuslib/internal/core"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Books core.BookRepository
}

// CatalogService orchestrates book catalog CRUD and search.
type CatalogService struct {
	books core.BookRepository
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	return &CatalogService{books: opts.Books}
}

// Create validates and adds a book to the catalog. All copies of a new book
// start available.
func (s *CatalogService) Create(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate book: %w", err)
	}
	return s.books.Create(ctx, req)
}

// GetByID retrieves a book by ID.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*model.Book, error) {
	return s.books.GetByID(ctx, id)
}

// List returns a page of books matching the options.
func (s *CatalogService) List(ctx context.Context, opts model.BooksListOptions) ([]*model.Book, error) {
	return s.books.List(ctx, normalizeBookListOptions(opts))
}

// Update validates and applies a partial update to a book.
func (s *CatalogService) Update(ctx context.Context, id string, req model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate book update: %w", err)
	}
	return s.books.Update(ctx, id, req)
}

// Delete removes a book from the catalog.
func (s *CatalogService) Delete(ctx context.Context, id string) (bool, error) {
	return s.books.Delete(ctx, id)
}

func normalizeBookListOptions(opts model.BooksListOptions) model.BooksListOptions {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Limit > 200 {
		opts.Limit = 200
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}
