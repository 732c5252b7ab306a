package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"portfolioserver/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth         *service.AuthService
	Profile      *service.ProfileService
	Reset        *service.PasswordResetService
	Messages     *service.MessageService
	Projects     *service.ProjectService
	Skills       *service.SkillService
	Applications *service.ApplicationService
	Timeline     *service.TimelineService

	CookieSecure bool
	SessionTTL   time.Duration
	CORSOrigins  []string
	// Metrics is optional; nil disables /metrics and request instrumentation.
	Metrics *Metrics
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:       logger,
		isProd:       opts.IsProd,
		dbPing:       opts.DBPing,
		authSvc:      opts.Auth,
		profileSvc:   opts.Profile,
		resetSvc:     opts.Reset,
		messageSvc:   opts.Messages,
		projectSvc:   opts.Projects,
		skillSvc:     opts.Skills,
		appSvc:       opts.Applications,
		timelineSvc:  opts.Timeline,
		cookieSecure: opts.CookieSecure,
		sessionTTL:   opts.SessionTTL,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", handleNotFound)
	mux.HandleFunc("GET /healthz", api.handleHealthz)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	const v1 = "/api/v1"

	if api.authSvc == nil {
		for _, p := range []string{
			"POST " + v1 + "/user/register",
			"POST " + v1 + "/user/login",
			"GET " + v1 + "/user/logout",
			"GET " + v1 + "/user/me",
			"PUT " + v1 + "/user/password/update",
		} {
			mux.HandleFunc(p, handleNotImplemented)
		}
	} else {
		mux.HandleFunc("POST "+v1+"/user/register", api.handleRegister)
		mux.HandleFunc("POST "+v1+"/user/login", api.handleLogin)
		mux.HandleFunc("GET "+v1+"/user/logout", api.requireAuth(api.handleLogout))
		mux.HandleFunc("GET "+v1+"/user/me", api.requireAuth(api.handleMe))
		mux.HandleFunc("PUT "+v1+"/user/password/update", api.requireAuth(api.handlePasswordUpdate))
		mux.HandleFunc("GET "+v1+"/user/portfolio/me", api.handlePortfolioMe)
		if api.profileSvc != nil {
			mux.HandleFunc("PUT "+v1+"/user/me/profile/update", api.requireAuth(api.handleProfileUpdate))
		}
	}

	if api.resetSvc != nil {
		mux.HandleFunc("POST "+v1+"/user/password/forgot", api.handlePasswordForgot)
		mux.HandleFunc("PUT "+v1+"/user/password/reset/{token}", api.handlePasswordReset)
	}

	if api.messageSvc != nil {
		mux.HandleFunc("POST "+v1+"/message/send", api.handleMessageSend)
		mux.HandleFunc("GET "+v1+"/message/getall", api.protected(api.handleMessageList))
		mux.HandleFunc("DELETE "+v1+"/message/delete/{id}", api.protected(api.handleMessageDelete))
	}

	if api.projectSvc != nil {
		mux.HandleFunc("POST "+v1+"/project/add", api.protected(api.handleProjectAdd))
		mux.HandleFunc("PUT "+v1+"/project/update/{id}", api.protected(api.handleProjectUpdate))
		mux.HandleFunc("DELETE "+v1+"/project/delete/{id}", api.protected(api.handleProjectDelete))
		mux.HandleFunc("GET "+v1+"/project/getall", api.handleProjectList)
		mux.HandleFunc("GET "+v1+"/project/get/{id}", api.handleProjectGet)
	}

	if api.skillSvc != nil {
		mux.HandleFunc("POST "+v1+"/skill/add", api.protected(api.handleSkillAdd))
		mux.HandleFunc("PUT "+v1+"/skill/update/{id}", api.protected(api.handleSkillUpdate))
		mux.HandleFunc("DELETE "+v1+"/skill/delete/{id}", api.protected(api.handleSkillDelete))
		mux.HandleFunc("GET "+v1+"/skill/getall", api.handleSkillList)
	}

	if api.appSvc != nil {
		mux.HandleFunc("POST "+v1+"/softwareapplication/add", api.protected(api.handleApplicationAdd))
		mux.HandleFunc("DELETE "+v1+"/softwareapplication/delete/{id}", api.protected(api.handleApplicationDelete))
		mux.HandleFunc("GET "+v1+"/softwareapplication/getall", api.handleApplicationList)
	}

	if api.timelineSvc != nil {
		mux.HandleFunc("POST "+v1+"/timeline/add", api.protected(api.handleTimelineAdd))
		mux.HandleFunc("DELETE "+v1+"/timeline/delete/{id}", api.protected(api.handleTimelineDelete))
		mux.HandleFunc("GET "+v1+"/timeline/getall", api.handleTimelineList)
	}

	var h http.Handler = mux
	if opts.Metrics != nil {
		h = opts.Metrics.Middleware(h)
	}
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = CORS(opts.CORSOrigins)(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

// protected requires a session, or answers 501 when no auth service is wired.
func (a *api) protected(next http.HandlerFunc) http.HandlerFunc {
	if a.authSvc == nil {
		return handleNotImplemented
	}
	return a.requireAuth(next)
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not_implemented", "not implemented")
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc     *service.AuthService
	profileSvc  *service.ProfileService
	resetSvc    *service.PasswordResetService
	messageSvc  *service.MessageService
	projectSvc  *service.ProjectService
	skillSvc    *service.SkillService
	appSvc      *service.ApplicationService
	timelineSvc *service.TimelineService

	cookieSecure bool
	sessionTTL   time.Duration
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
