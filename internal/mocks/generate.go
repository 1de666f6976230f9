// Package mocks provides mock implementations for testing campuslib services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockBookRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(book, nil)
package mocks

// Generate mocks for the repository interfaces in internal/core. All
// repository mocks land in one file to keep regeneration a single command.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=repositories_mock.go github.com/campuslib/campuslib/internal/core StaffRepository,MemberRepository,BookRepository,BorrowingRepository,FineRepository,ReportRepository,SecurityEventRepository
