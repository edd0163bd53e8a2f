package services

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/easysplit_backend/internal/apperrors"
	"github.com/SscSPs/easysplit_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/easysplit_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/middleware"
	"github.com/SscSPs/easysplit_backend/internal/platform/metrics"
	"github.com/SscSPs/easysplit_backend/internal/platform/telemetry"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BaseService provides common functionality for all services
type BaseService struct {
	GroupAuthorizer portssvc.GroupAuthorizerSvc
	Metrics         *metrics.Metrics
	Now             func() time.Time
}

// ServiceOption configures the BaseService embedded in every service.
type ServiceOption func(*BaseService)

// WithGroupAuthorizer sets the authorizer used by AuthorizeUser.
func WithGroupAuthorizer(a portssvc.GroupAuthorizerSvc) ServiceOption {
	return func(b *BaseService) { b.GroupAuthorizer = a }
}

// WithMetrics sets the collectors mutations report to.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(b *BaseService) { b.Metrics = m }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(b *BaseService) { b.Now = now }
}

func newBaseService(opts ...ServiceOption) BaseService {
	b := BaseService{Now: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeUser resolves the group and checks that userID holds required on it.
func (s *BaseService) AuthorizeUser(ctx context.Context, userID, groupID string, required domain.MemberPermission) (*domain.Group, error) {
	if s.GroupAuthorizer == nil {
		s.LogError(ctx, apperrors.ErrForbidden, "No group authorizer configured, denying access",
			slog.String("user_id", userID),
			slog.String("group_id", groupID))
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "group authorizer not configured", apperrors.ErrForbidden)
	}
	return s.GroupAuthorizer.AuthorizeGroupAction(ctx, userID, groupID, required)
}

func (s *BaseService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *BaseService) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// runInTx runs fn inside one transaction, committing only when fn succeeds.
func (s *BaseService) runInTx(ctx context.Context, txm portsrepo.TransactionManager, fn func(tx pgx.Tx) error) error {
	tx, err := txm.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin transaction")
		return err
	}
	defer func() {
		if rbErr := txm.Rollback(ctx, tx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to rollback transaction")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := txm.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit transaction")
		return err
	}
	return nil
}
