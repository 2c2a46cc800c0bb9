package contact

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inserview.studio/web/internal/observability"
)

var (
	// ErrNotConfigured is returned when delivery credentials are missing.
	ErrNotConfigured = errors.New("contact: email delivery not configured")
	// ErrRateLimited is returned when a client submits too often.
	ErrRateLimited = errors.New("contact: too many submissions")
	// ErrDelivery wraps failures reported by the mail provider.
	ErrDelivery = errors.New("contact: delivery failed")
)

// Sender delivers rendered template parameters.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, params TemplateParams) error
}

// Receipt identifies an accepted submission.
type Receipt struct {
	ID     string
	SentAt time.Time
}

// Service runs a submission through validation, rate limiting and delivery.
type Service struct {
	sender    Sender
	limiter   *Limiter
	recipient string
	metrics   *observability.Metrics
	now       func() time.Time
	newID     func() string
}

// Option customises a Service.
type Option func(*Service)

// WithMetrics counts submissions by outcome.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires a sender and limiter. recipient becomes the template's
// to_email value.
func NewService(sender Sender, limiter *Limiter, recipient string, opts ...Option) *Service {
	s := &Service{
		sender:    sender,
		limiter:   limiter,
		recipient: recipient,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates form and delivers it on behalf of clientKey.
func (s *Service) Submit(ctx context.Context, clientKey string, form Form) (Receipt, error) {
	logger := observability.FromContext(ctx)

	if err := form.Validate(); err != nil {
		s.count("invalid")
		return Receipt{}, err
	}
	if s.sender == nil || !s.sender.Configured() {
		s.count("not_configured")
		logger.Error("contact delivery is not configured")
		return Receipt{}, ErrNotConfigured
	}
	if s.limiter != nil && !s.limiter.Allow(clientKey) {
		s.count("rate_limited")
		logger.Warn("contact submission rate limited", zap.String("client", clientKey))
		return Receipt{}, ErrRateLimited
	}

	receipt := Receipt{ID: s.newID(), SentAt: s.now()}
	if err := s.sender.Send(ctx, form.Params(s.recipient)); err != nil {
		s.count("failed")
		logger.Error("contact delivery failed", zap.String("submission_id", receipt.ID), zap.Error(err))
		if errors.Is(err, ErrNotConfigured) {
			return Receipt{}, err
		}
		if !errors.Is(err, ErrDelivery) {
			err = errors.Join(ErrDelivery, err)
		}
		return Receipt{}, err
	}
	s.count("sent")
	logger.Info("contact submission sent", zap.String("submission_id", receipt.ID))
	return receipt, nil
}

func (s *Service) count(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ContactSubmissions.WithLabelValues(outcome).Inc()
}

// MessageKey maps a Submit result onto the locale key of its toast.
func MessageKey(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "contact.toast.success"
	case errors.As(err, &verr):
		return "contact.toast.invalid"
	case errors.Is(err, ErrNotConfigured):
		return "contact.toast.not_configured"
	case errors.Is(err, ErrRateLimited):
		return "contact.toast.rate_limited"
	default:
		return "contact.toast.failed"
	}
}
