package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	campuslib "github.com/campuslib/campuslib"
	"github.com/campuslib/campuslib/internal/core"
	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Guard      GuardInterface
	Catalog    *service.CatalogService
	Borrowings *service.BorrowingService
	Fines      *service.FineService
	Reports    *service.ReportService
	Members    core.MemberRepository
	Staff      core.StaffRepository
	Events     core.SecurityEventRepository

	CookieDomain string
	BcryptCost   int          // Work factor for new staff passwords; zero selects the default
	IsDev        bool         // Development mode flag for template reloading
	Logger       *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	renderer := setupRenderer(services)

	authHandlers := &AuthHandlers{
		Guard:        services.Guard,
		Renderer:     renderer,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	uiHandlers := &UIHandlers{
		T:          renderer,
		Guard:      services.Guard,
		Reports:    services.Reports,
		Borrowings: services.Borrowings,
		Fines:      services.Fines,
		Logger:     services.Logger,
	}

	cfg := routeConfig{Guard: services.Guard, CookieDomain: services.CookieDomain}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	registerAuthRoutes(mux, authHandlers, cfg)
	registerUIRoutes(mux, uiHandlers, cfg)
	registerBookRoutes(mux, &BookHandlers{Svc: services.Catalog}, cfg)
	registerBorrowingRoutes(mux, &BorrowingHandlers{Svc: services.Borrowings}, cfg)
	registerFineRoutes(mux, &FineHandlers{Svc: services.Fines}, cfg)
	registerMemberRoutes(mux, &MemberHandlers{Repo: services.Members}, cfg)
	registerStaffRoutes(mux, &StaffHandlers{Repo: services.Staff, BcryptCost: services.BcryptCost}, cfg)
	registerReportRoutes(mux, &ReportHandlers{Svc: services.Reports}, cfg)
	registerEventRoutes(mux, &SecurityEventHandlers{Repo: services.Events}, cfg)

	return mux
}

// setupRenderer builds the template renderer.
// In dev mode templates are read from disk for hot reloading; in production
// they come from the embedded filesystem.
func setupRenderer(services RouterServices) *TemplateRenderer {
	var templateFS fs.FS
	if services.IsDev {
		templateFS = os.DirFS("templates")
	} else {
		sub, err := fs.Sub(campuslib.TemplateFS, "templates")
		if err != nil {
			if services.Logger != nil {
				services.Logger.Error("embedded template filesystem unavailable", slog.Any("error", err))
			}
			templateFS = os.DirFS("templates")
		} else {
			templateFS = sub
		}
	}

	renderer, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		Logger:     services.Logger,
	})
	if err != nil {
		if services.Logger != nil {
			services.Logger.Error("failed to create template renderer", slog.Any("error", err))
		}
		return nil
	}
	return renderer
}

// routeConfig holds configuration for route registration.
type routeConfig struct {
	Guard        GuardInterface
	CookieDomain string
}

// authWrap requires a live session.
func (cfg routeConfig) authWrap() func(http.Handler) http.Handler {
	if cfg.Guard == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return RequireAuth(cfg.Guard, cfg.CookieDomain)
}

// csrfWrap attaches the session when one is present and enforces CSRF on
// state-changing requests without requiring a role. Used for logout, which
// must not be forgeable cross-site: a forged request carries the victim's
// cookie but never the session-bound token.
func (cfg routeConfig) csrfWrap() func(http.Handler) http.Handler {
	if cfg.Guard == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	csrf := CSRFProtection(cfg.Guard)
	optional := OptionalAuth(cfg.Guard, cfg.CookieDomain)
	return func(h http.Handler) http.Handler {
		return optional(csrf(h))
	}
}

// roleWrap requires a live session whose role grants the required role, and
// applies CSRF validation on state-changing requests.
func (cfg routeConfig) roleWrap(required domainauth.Role) func(http.Handler) http.Handler {
	if cfg.Guard == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	csrf := CSRFProtection(cfg.Guard)
	roleCheck := RequireRole(cfg.Guard, cfg.CookieDomain, required)
	return func(h http.Handler) http.Handler {
		return roleCheck(csrf(h))
	}
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, cfg routeConfig) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.Handle("POST /logout", cfg.csrfWrap()(http.HandlerFunc(h.Logout)))
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.Handle("GET /auth/csrf", cfg.authWrap()(http.HandlerFunc(h.CSRFToken)))
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, cfg routeConfig) {
	if cfg.Guard != nil {
		mux.Handle("GET /{$}", OptionalAuth(cfg.Guard, cfg.CookieDomain)(http.HandlerFunc(h.Index)))
	} else {
		mux.HandleFunc("GET /{$}", h.Index)
	}
	mux.Handle("GET /admin", cfg.roleWrap(domainauth.RoleAdmin)(http.HandlerFunc(h.AdminDashboard)))
	mux.Handle("GET /librarian", cfg.roleWrap(domainauth.RoleLibrarian)(http.HandlerFunc(h.LibrarianDashboard)))
	mux.Handle("GET /member", cfg.authWrap()(http.HandlerFunc(h.MemberDashboard)))
}

func registerBookRoutes(mux *http.ServeMux, h *BookHandlers, cfg routeConfig) {
	wrap := cfg.authWrap()
	wrapLibrarian := cfg.roleWrap(domainauth.RoleLibrarian)

	mux.Handle("GET /api/books", wrap(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/books/{id}", wrap(http.HandlerFunc(h.GetByID)))
	mux.Handle("POST /api/books", wrapLibrarian(http.HandlerFunc(h.Create)))
	mux.Handle("PUT /api/books/{id}", wrapLibrarian(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/books/{id}", wrapLibrarian(http.HandlerFunc(h.Delete)))
}

func registerBorrowingRoutes(mux *http.ServeMux, h *BorrowingHandlers, cfg routeConfig) {
	wrap := cfg.authWrap()
	wrapLibrarian := cfg.roleWrap(domainauth.RoleLibrarian)

	mux.Handle("GET /api/borrowings", wrap(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/borrowings/{id}", wrap(http.HandlerFunc(h.GetByID)))
	mux.Handle("POST /api/borrowings", wrapLibrarian(http.HandlerFunc(h.Borrow)))
	mux.Handle("POST /api/borrowings/{id}/return", wrapLibrarian(http.HandlerFunc(h.Return)))
}

func registerFineRoutes(mux *http.ServeMux, h *FineHandlers, cfg routeConfig) {
	wrap := cfg.authWrap()
	wrapLibrarian := cfg.roleWrap(domainauth.RoleLibrarian)

	mux.Handle("GET /api/fines", wrap(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/fines/{id}", wrap(http.HandlerFunc(h.GetByID)))
	mux.Handle("POST /api/fines/{id}/pay", wrapLibrarian(http.HandlerFunc(h.Pay)))
	mux.Handle("POST /api/fines/{id}/waive", wrapLibrarian(http.HandlerFunc(h.Waive)))
}

func registerMemberRoutes(mux *http.ServeMux, h *MemberHandlers, cfg routeConfig) {
	wrapLibrarian := cfg.roleWrap(domainauth.RoleLibrarian)

	mux.Handle("GET /api/members", wrapLibrarian(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/members/{id}", wrapLibrarian(http.HandlerFunc(h.GetByID)))
	mux.Handle("POST /api/members", wrapLibrarian(http.HandlerFunc(h.Create)))
}

func registerStaffRoutes(mux *http.ServeMux, h *StaffHandlers, cfg routeConfig) {
	wrapAdmin := cfg.roleWrap(domainauth.RoleAdmin)

	mux.Handle("GET /api/staff", wrapAdmin(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/staff", wrapAdmin(http.HandlerFunc(h.Create)))
}

func registerReportRoutes(mux *http.ServeMux, h *ReportHandlers, cfg routeConfig) {
	wrapLibrarian := cfg.roleWrap(domainauth.RoleLibrarian)

	mux.Handle("GET /api/reports/overdue", wrapLibrarian(http.HandlerFunc(h.Overdue)))
	mux.Handle("GET /api/reports/popular", wrapLibrarian(http.HandlerFunc(h.Popular)))
	mux.Handle("GET /api/reports/daily", wrapLibrarian(http.HandlerFunc(h.Daily)))
	mux.Handle("GET /api/reports/current", wrapLibrarian(http.HandlerFunc(h.Current)))
}

func registerEventRoutes(mux *http.ServeMux, h *SecurityEventHandlers, cfg routeConfig) {
	wrapAdmin := cfg.roleWrap(domainauth.RoleAdmin)

	mux.Handle("GET /api/security-events", wrapAdmin(http.HandlerFunc(h.Recent)))
}
