package httpx

import (
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/domain/model"
	"github.com/campuslib/campuslib/internal/service"
)

// UIHandlers renders the server-side HTML pages.
type UIHandlers struct {
	T          *TemplateRenderer
	Guard      GuardInterface
	Reports    *service.ReportService
	Borrowings *service.BorrowingService
	Fines      *service.FineService
	Logger     *slog.Logger
}

func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// pageData is the common template payload for dashboard pages.
type pageData struct {
	User      domainauth.View
	CSRFToken string
}

// Index routes the root path to the landing page for the session's role,
// or to the login page when unauthenticated.
// GET /.
func (h *UIHandlers) Index(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	route := h.Guard.ResolveLandingRoute(session.Role)
	if route.SignOut {
		clearSessionCookie(w, r, "")
		http.Redirect(w, r, route.Destination, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, route.Destination, http.StatusSeeOther)
}

// basePageData builds the common payload, issuing the CSRF token for forms.
func (h *UIHandlers) basePageData(r *http.Request, session *domainauth.Session) pageData {
	token, err := h.Guard.IssueCSRFToken(r.Context(), session.ID)
	if err != nil {
		h.logger().WarnContext(r.Context(), "csrf token issue failed", "error", err)
	}
	return pageData{User: session.View(), CSRFToken: token}
}

// adminDashboardData is the template payload for the admin area.
type adminDashboardData struct {
	pageData
	Summary *model.DailySummary
}

// AdminDashboard renders the admin area.
// GET /admin.
func (h *UIHandlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	data := adminDashboardData{pageData: h.basePageData(r, session)}
	if h.Reports != nil {
		summary, err := h.Reports.DailySummary(r.Context(), time.Now().UTC())
		if err != nil {
			h.logger().WarnContext(r.Context(), "daily summary failed", "error", err)
		} else {
			data.Summary = summary
		}
	}

	h.render(w, r, "admin", data)
}

// librarianDashboardData is the template payload for the librarian area.
type librarianDashboardData struct {
	pageData
	Overdue []model.OverdueBookRow
}

// LibrarianDashboard renders the circulation desk area.
// GET /librarian.
func (h *UIHandlers) LibrarianDashboard(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	data := librarianDashboardData{pageData: h.basePageData(r, session)}
	if h.Reports != nil {
		rows, err := h.Reports.OverdueBooks(r.Context(), 25)
		if err != nil {
			h.logger().WarnContext(r.Context(), "overdue report failed", "error", err)
		} else {
			data.Overdue = rows
		}
	}

	h.render(w, r, "librarian", data)
}

// memberDashboardData is the template payload for the member area.
type memberDashboardData struct {
	pageData
	Loans            []*model.Borrowing
	OutstandingCents int64
}

// MemberDashboard renders the member area with the member's own loans and fines.
// GET /member.
func (h *UIHandlers) MemberDashboard(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	data := memberDashboardData{pageData: h.basePageData(r, session)}
	memberID := session.PrincipalID

	if h.Borrowings != nil {
		loans, err := h.Borrowings.List(r.Context(), model.BorrowingsListOptions{
			MemberID:   &memberID,
			Unreturned: true,
			Limit:      50,
		})
		if err != nil {
			h.logger().WarnContext(r.Context(), "member loans lookup failed", "error", err)
		} else {
			data.Loans = loans
		}
	}
	if h.Fines != nil {
		total, err := h.Fines.OutstandingTotalCents(r.Context(), memberID)
		if err != nil {
			h.logger().WarnContext(r.Context(), "outstanding fines lookup failed", "error", err)
		} else {
			data.OutstandingCents = total
		}
	}

	h.render(w, r, "member", data)
}

func (h *UIHandlers) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if h.T == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := h.T.Render(w, name, data); err != nil {
		h.logger().ErrorContext(r.Context(), "page render failed", "template", name, "error", err)
	}
}
