package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pennywise/internal/realtime"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=notification
type Repository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID) ([]*Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	DeleteNotification(ctx context.Context, userID, id uuid.UUID) error
}

// Service persists notifications and attempts realtime delivery. Persistence
// is the source of truth; the push is fire-and-forget and its failure never
// reaches the caller.
type Service struct {
	repo     Repository
	registry *realtime.Registry
}

func NewService(repo Repository, registry *realtime.Registry) *Service {
	return &Service{repo: repo, registry: registry}
}

func (s *Service) Notify(ctx context.Context, userID uuid.UUID, message string) (*Notification, error) {
	n := &Notification{
		UserID:  userID,
		Message: message,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	s.push(n)

	return n, nil
}

type pushPayload struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Service) push(n *Notification) {
	conn, ok := s.registry.Lookup(n.UserID)
	if !ok {
		return
	}

	payload := pushPayload{
		ID:        n.ID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}

	go func() {
		if err := conn.Send("notification", payload); err != nil {
			slog.Warn("realtime delivery failed", "user_id", n.UserID, "error", err)
		}
	}()
}

// BudgetExceeded records the over-limit event for the category. Errors are
// logged and swallowed: the accounting path never fails on notification.
func (s *Service) BudgetExceeded(ctx context.Context, userID uuid.UUID, category string) {
	message := fmt.Sprintf("You have exceeded the budget for %s", category)
	if _, err := s.Notify(ctx, userID, message); err != nil {
		slog.Error("failed to create budget exceeded notification", "user_id", userID, "category", category, "error", err)
	}
}

func (s *Service) GoalAchieved(ctx context.Context, userID uuid.UUID, title string) {
	message := fmt.Sprintf("You have acheived the completion of %s financial goal", title)
	if _, err := s.Notify(ctx, userID, message); err != nil {
		slog.Error("failed to create goal achieved notification", "user_id", userID, "title", title, "error", err)
	}
}

func (s *Service) GoalExpired(ctx context.Context, userID uuid.UUID, title string) {
	message := fmt.Sprintf("The deadline for %s financial goal has expired", title)
	if _, err := s.Notify(ctx, userID, message); err != nil {
		slog.Error("failed to create goal expired notification", "user_id", userID, "title", title, "error", err)
	}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Notification, error) {
	return s.repo.ListNotifications(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteNotification(ctx, userID, id)
}
