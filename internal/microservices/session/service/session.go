package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	notify "cafe-ordering/internal/microservices/notificator/service"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
)

// Store keeps sessions and the one-feedback-per-session flag.
type Store interface {
	SaveSession(ctx context.Context, s *domain.CafeTableSession, ttl time.Duration) error
	GetSession(ctx context.Context, id string) (*domain.CafeTableSession, error)
	MarkFeedback(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ClearFeedback(ctx context.Context, sessionID string) error
}

type Config struct {
	BotToken   string
	MaxAge     time.Duration
	AuthMaxAge time.Duration
}

type StartInput struct {
	StartParam   string            `json:"startParam"`
	TenantID     string            `json:"cafeId"`
	Table        int               `json:"table"`
	TelegramAuth map[string]string `json:"telegramAuth"`
}

type SessionServiceInterface interface {
	StartSession(ctx context.Context, in StartInput) (*domain.CafeTableSession, error)
	GetSession(ctx context.Context, id string) (*domain.CafeTableSession, error)
	SubmitFeedback(ctx context.Context, sessionID string, rating int, comment string) (*domain.Feedback, error)
	CallWaiter(ctx context.Context, sessionID, note string) (notify.WaiterCallResult, error)
}

type SessionService struct {
	store    Store
	tenants  tenants.TenantRepositoryInterface
	notifier notify.DispatcherInterface
	cfg      Config
	lg       *logger.Logger
	now      func() time.Time
}

func NewSessionService(store Store, tenantRepo tenants.TenantRepositoryInterface, notifier notify.DispatcherInterface, cfg Config, lg *logger.Logger) *SessionService {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 24 * time.Hour
	}
	return &SessionService{store: store, tenants: tenantRepo, notifier: notifier, cfg: cfg, lg: lg, now: time.Now}
}

func (s *SessionService) StartSession(ctx context.Context, in StartInput) (*domain.CafeTableSession, error) {
	tenantID, table := in.TenantID, in.Table
	if in.StartParam != "" {
		var err error
		if tenantID, table, err = ParseStartParam(in.StartParam); err != nil {
			return nil, err
		}
	}
	var missing []string
	if tenantID == "" {
		missing = append(missing, "cafeId")
	}
	if table == 0 {
		missing = append(missing, "table")
	}
	if len(missing) > 0 {
		return nil, domain.Missing(missing...)
	}

	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if table < 1 || (tenant.TableCount > 0 && table > tenant.TableCount) {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("Table %d does not exist", table)}
	}

	now := s.now().UTC()
	sess := &domain.CafeTableSession{
		SessionID:   uuid.NewString(),
		TenantID:    tenantID,
		TableNumber: table,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.MaxAge),
	}
	if len(in.TelegramAuth) > 0 {
		user, err := VerifyTelegramLogin(in.TelegramAuth, s.cfg.BotToken, s.cfg.AuthMaxAge, now)
		if err != nil {
			return nil, err
		}
		sess.TelegramUser = user
	}
	if err := s.store.SaveSession(ctx, sess, s.cfg.MaxAge); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.lg.Info("session_started", map[string]any{
		"session_id": sess.SessionID, "tenant_id": tenantID, "table": table, "telegram": sess.TelegramUser != nil,
	})
	return sess, nil
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*domain.CafeTableSession, error) {
	if id == "" {
		return nil, domain.Missing("sessionId")
	}
	return s.store.GetSession(ctx, id)
}

// SubmitFeedback accepts one rating per session and forwards it to the admin chat.
func (s *SessionService) SubmitFeedback(ctx context.Context, sessionID string, rating int, comment string) (*domain.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, &domain.ValidationError{Message: "rating must be between 1 and 5"}
	}
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		ttl = s.cfg.MaxAge
	}
	first, err := s.store.MarkFeedback(ctx, sessionID, ttl)
	if err != nil {
		return nil, err
	}
	if !first {
		return nil, fmt.Errorf("feedback for session %s: %w", sessionID, domain.ErrAlreadySubmitted)
	}

	fb := &domain.Feedback{
		SessionID:   sessionID,
		TenantID:    sess.TenantID,
		TableNumber: sess.TableNumber,
		Rating:      rating,
		Comment:     strings.TrimSpace(comment),
		CreatedAt:   s.now().UTC(),
	}
	if !s.notifier.Notify(ctx, sess.TenantID, domain.RoleAdmin, notify.KindFeedback, notify.Payload{Feedback: fb}) {
		// даём гостю повторить
		if err := s.store.ClearFeedback(ctx, sessionID); err != nil {
			s.lg.Error("feedback_flag_clear_failed", err, map[string]any{"session_id": sessionID})
		}
		return nil, &domain.ExternalCallError{Target: "telegram", Retryable: true, Err: errors.New("feedback was not delivered")}
	}
	s.lg.Info("feedback_submitted", map[string]any{"session_id": sessionID, "tenant_id": sess.TenantID, "rating": rating})
	return fb, nil
}

func (s *SessionService) CallWaiter(ctx context.Context, sessionID, note string) (notify.WaiterCallResult, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return notify.WaiterCallResult{}, err
	}
	return s.notifier.NotifyWaiterCall(ctx, sess.TenantID, sess.TableNumber, strings.TrimSpace(note))
}
