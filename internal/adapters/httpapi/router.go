package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type RouterOptions struct {
	// Gatherer backs GET /metrics. Nil leaves the endpoint unmounted.
	Gatherer prometheus.Gatherer
	// Logger receives one line per request. Nil disables request logging.
	Logger *logrus.Logger
}

// NewRouter constructs the portal's HTTP router.
func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{Logger: s.log})
}

func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.Logger != nil {
		r.Use(requestLogger(opts.Logger))
	}
	r.Use(s.metrics.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.loadSession)

		r.Get("/", s.Index)
		r.Get("/register", s.RegisterForm)
		r.Post("/register", s.Register)
		r.Get("/login", s.LoginForm)
		r.Post("/login", s.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireMember)

			r.Get("/logout", s.Logout)
			r.Get("/profile", s.Profile)
			r.Get("/book_meal", s.BookMealForm)
			r.Post("/book_meal", s.BookMeal)
		})
	})
	r.NotFound(s.NotFound)

	return r
}
