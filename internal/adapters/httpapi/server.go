package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/unique-meal/member-portal/internal/app/bookings"
	"github.com/unique-meal/member-portal/internal/app/members"
	"github.com/unique-meal/member-portal/internal/app/sessions"
	"github.com/unique-meal/member-portal/internal/domain"
)

// maxFormBytes bounds every urlencoded form body.
const maxFormBytes = 64 << 10

const bookedFlash = "Meal booked successfully!"

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

type ServerOptions struct {
	Cookie CookieOptions
	// Metrics may be nil.
	Metrics *Metrics
}

// Server implements the portal's HTML pages on top of the application services.
type Server struct {
	members  *members.Service
	bookings *bookings.Service
	sessions *sessions.Service
	log      *logrus.Logger
	metrics  *Metrics
	views    *renderer
	cookie   CookieOptions
}

func NewServer(membersSvc *members.Service, bookingsSvc *bookings.Service, sessionsSvc *sessions.Service, log *logrus.Logger, opts ServerOptions) (*Server, error) {
	views, err := newRenderer()
	if err != nil {
		return nil, err
	}
	if opts.Cookie.Name == "" {
		opts.Cookie.Name = "member_session"
	}
	return &Server{
		members:  membersSvc,
		bookings: bookingsSvc,
		sessions: sessionsSvc,
		log:      log,
		metrics:  opts.Metrics,
		views:    views,
		cookie:   opts.Cookie,
	}, nil
}

func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "index", pageData{Title: "Welcome"})
}

func (s *Server) RegisterForm(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "register", pageData{Title: "Register"})
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	in := members.RegisterInput{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	m, err := s.members.Register(r.Context(), in)
	if err != nil {
		var ae *members.Error
		if errors.As(err, &ae) {
			switch ae.Status {
			case http.StatusUnprocessableEntity:
				s.metrics.registration("invalid")
			case http.StatusConflict:
				s.metrics.registration("conflict")
			default:
				s.serverError(w, r, err)
				return
			}
			s.page(w, r, ae.Status, "register", pageData{
				Title:  "Register",
				Error:  ae.Message,
				Form:   map[string]string{"username": in.Username, "email": in.Email},
				Errors: ae.Details,
			})
			return
		}
		s.serverError(w, r, err)
		return
	}
	s.metrics.registration("success")

	if !s.startSession(w, r, m.ID) {
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) LoginForm(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "login", pageData{Title: "Log in"})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	identifier := r.PostFormValue("identifier")

	m, err := s.members.Authenticate(r.Context(), identifier, r.PostFormValue("password"))
	if err != nil {
		var ae *members.Error
		if errors.As(err, &ae) && ae.Status == http.StatusUnauthorized {
			s.metrics.login("failure")
			s.page(w, r, http.StatusUnauthorized, "login", pageData{
				Title: "Log in",
				Error: ae.Message,
				Form:  map[string]string{"identifier": identifier},
			})
			return
		}
		s.serverError(w, r, err)
		return
	}
	s.metrics.login("success")

	if !s.startSession(w, r, m.ID) {
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.End(r.Context(), sessionCookieFromContext(r.Context())); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) Profile(w http.ResponseWriter, r *http.Request) {
	m, _ := MemberFromContext(r.Context())
	n, err := s.bookings.CountMyBookings(r.Context(), m.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, "profile", pageData{Title: "Your profile", BookingCount: n})
}

func (s *Server) BookMealForm(w http.ResponseWriter, r *http.Request) {
	m, _ := MemberFromContext(r.Context())
	list, err := s.bookings.ListMyBookings(r.Context(), m.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, "book_meal", pageData{Title: "Book a meal", Bookings: list})
}

func (s *Server) BookMeal(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	m, _ := MemberFromContext(r.Context())
	in := bookings.BookMealInput{
		MealName: r.PostFormValue("meal_name"),
		MealDate: r.PostFormValue("meal_date"),
	}

	data := pageData{Title: "Book a meal"}
	status := http.StatusOK
	if _, err := s.bookings.BookMeal(r.Context(), m.ID, in); err != nil {
		var ae *bookings.Error
		if !errors.As(err, &ae) {
			s.serverError(w, r, err)
			return
		}
		switch ae.Status {
		case http.StatusUnprocessableEntity:
			status = ae.Status
			data.Error = ae.Message
			data.Errors = ae.Details
			data.Form = map[string]string{"meal_name": in.MealName, "meal_date": in.MealDate}
		case http.StatusNotFound:
			s.endOrphanedSession(r, sessionCookieFromContext(r.Context()))
			s.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		default:
			s.serverError(w, r, err)
			return
		}
	} else {
		s.metrics.mealBooked()
		data.Flash = bookedFlash
	}

	list, err := s.bookings.ListMyBookings(r.Context(), m.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data.Bookings = list
	s.page(w, r, status, "book_meal", data)
}

func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusNotFound, "error", pageData{Title: "Page not found"})
}

// startSession replaces whatever session the browser already had.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, id domain.MemberID) bool {
	if old := sessionCookieFromContext(r.Context()); old != "" {
		if err := s.sessions.End(r.Context(), old); err != nil {
			s.serverError(w, r, err)
			return false
		}
	}
	token, sess, err := s.sessions.Start(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return false
	}
	s.setSessionCookie(w, token, sess.ExpiresAt)
	return true
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		status := http.StatusBadRequest
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			status = http.StatusRequestEntityTooLarge
		}
		s.page(w, r, status, "error", pageData{Title: http.StatusText(status)})
		return false
	}
	return true
}

// page renders a template with the request's member filled in.
func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	if m, ok := MemberFromContext(r.Context()); ok {
		data.Member = &m
	}
	if err := s.views.render(w, r, status, name, data); err != nil {
		s.log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithError(err).WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"path":       r.URL.Path,
	}).Error("request failed")
	s.page(w, r, http.StatusInternalServerError, "error", pageData{Title: "Something went wrong"})
}
