// Package subscribe handles newsletter sign-ups: request validation, the
// response contract and pluggable subscriber stores.
package subscribe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var subscriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "newsletter_subscriptions_total",
	Help: "Newsletter subscription attempts by result",
}, []string{"result"})

// Response messages.
const (
	MsgEmailRequired  = "Email is required"
	MsgInvalidEmail   = "Invalid email format"
	MsgSubscribed     = "Successfully subscribed to newsletter"
	MsgStoreFailure   = "Error subscribing to newsletter"
	MsgInternalServer = "Internal server error"
)

var (
	// ErrEmailRequired is returned for an empty email.
	ErrEmailRequired = errors.New("email is required")

	// ErrInvalidEmail is returned when the email does not look like a@b.c.
	ErrInvalidEmail = errors.New("invalid email format")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Request is the subscribe request body.
type Request struct {
	Email string `json:"email" validate:"required,basicemail"`
}

// Result is the subscribe response body. StatusCode is the HTTP status to
// answer with.
type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

// Service validates requests and records subscribers.
type Service struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
	logger   zerolog.Logger
}

// NewService creates a subscribe service backed by store.
func NewService(store Store, logger zerolog.Logger) *Service {
	v := validator.New()
	if err := v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return &Service{
		store:    store,
		validate: v,
		now:      time.Now,
		logger:   logger.With().Str("component", "newsletter").Logger(),
	}
}

// Validate checks req and returns ErrEmailRequired or ErrInvalidEmail.
func (s *Service) Validate(req Request) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
		return ErrEmailRequired
	}
	return ErrInvalidEmail
}

// Subscribe validates email and stores it. Re-subscribing an address that is
// already stored succeeds.
func (s *Service) Subscribe(ctx context.Context, email string) Result {
	switch err := s.Validate(Request{Email: email}); {
	case errors.Is(err, ErrEmailRequired):
		subscriptionsTotal.WithLabelValues("invalid").Inc()
		return Result{Message: MsgEmailRequired, StatusCode: http.StatusBadRequest}
	case err != nil:
		subscriptionsTotal.WithLabelValues("invalid").Inc()
		return Result{Message: MsgInvalidEmail, StatusCode: http.StatusBadRequest}
	}

	added, err := s.store.Add(ctx, strings.ToLower(email), s.now())
	if err != nil {
		subscriptionsTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Msg("Newsletter service error")
		return Result{Message: MsgStoreFailure, StatusCode: http.StatusInternalServerError}
	}

	subscriptionsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Bool("new", added).Msg("Newsletter subscription")
	return Result{Success: true, Message: MsgSubscribed, StatusCode: http.StatusOK}
}

// SubscribeJSON decodes a request body and subscribes the email in it. Only
// a body that is not JSON at all (or is JSON null) is an internal error. A
// missing or falsy email is "required"; any other non-string email is invalid.
func (s *Service) SubscribeJSON(ctx context.Context, body io.Reader) Result {
	var payload any
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload == nil {
		if err == nil {
			err = errors.New("null request body")
		}
		subscriptionsTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Msg("Newsletter subscription error")
		return Result{Message: MsgInternalServer, StatusCode: http.StatusInternalServerError}
	}

	obj, _ := payload.(map[string]any)
	switch email := obj["email"].(type) {
	case string:
		return s.Subscribe(ctx, email)
	case nil:
		return s.Subscribe(ctx, "")
	case bool:
		if !email {
			return s.Subscribe(ctx, "")
		}
	case float64:
		if email == 0 {
			return s.Subscribe(ctx, "")
		}
	}

	subscriptionsTotal.WithLabelValues("invalid").Inc()
	return Result{Message: MsgInvalidEmail, StatusCode: http.StatusBadRequest}
}
