package data

import "github.com/campuslib/campuslib/internal/core"

// Compile-time checks that the concrete repos satisfy the core contracts.
var (
	_ core.StaffRepository         = (*StaffRepo)(nil)
	_ core.MemberRepository        = (*MemberRepo)(nil)
	_ core.BookRepository          = (*BookRepo)(nil)
	_ core.BorrowingRepository     = (*BorrowingRepo)(nil)
	_ core.FineRepository          = (*FineRepo)(nil)
	_ core.ReportRepository        = (*ReportRepo)(nil)
	_ core.SecurityEventRepository = (*SecurityEventRepo)(nil)
)
