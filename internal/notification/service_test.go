package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pennywise/internal/notification"
	"pennywise/internal/realtime"
)

type fakeConn struct {
	events chan string
	err    error
}

func (c *fakeConn) Send(event string, payload any) error {
	c.events <- event
	return c.err
}

func TestService_Notify(t *testing.T) {
	userID := uuid.New()

	t.Run("PersistsThenPushes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := notification.NewMockRepository(ctrl)
		registry := realtime.NewRegistry()

		conn := &fakeConn{events: make(chan string, 1)}
		registry.Register(userID, conn)

		repo.EXPECT().
			CreateNotification(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, n *notification.Notification) error {
				n.ID = uuid.New()
				n.CreatedAt = time.Now()
				return nil
			})

		svc := notification.NewService(repo, registry)
		got, err := svc.Notify(context.Background(), userID, "hello")

		require.NoError(t, err)
		assert.Equal(t, "hello", got.Message)

		select {
		case event := <-conn.events:
			assert.Equal(t, "notification", event)
		case <-time.After(time.Second):
			t.Fatal("expected a realtime push")
		}
	})

	t.Run("PushFailureNeverReachesCaller", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := notification.NewMockRepository(ctrl)
		registry := realtime.NewRegistry()

		conn := &fakeConn{events: make(chan string, 1), err: errors.New("socket gone")}
		registry.Register(userID, conn)

		repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)

		svc := notification.NewService(repo, registry)
		_, err := svc.Notify(context.Background(), userID, "hello")

		require.NoError(t, err)
		<-conn.events
	})

	t.Run("NoConnectionStillPersists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := notification.NewMockRepository(ctrl)

		repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(nil)

		svc := notification.NewService(repo, realtime.NewRegistry())
		_, err := svc.Notify(context.Background(), userID, "hello")

		require.NoError(t, err)
	})

	t.Run("PersistFailureSkipsPush", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := notification.NewMockRepository(ctrl)
		registry := realtime.NewRegistry()

		conn := &fakeConn{events: make(chan string, 1)}
		registry.Register(userID, conn)

		repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(errors.New("db error"))

		svc := notification.NewService(repo, registry)
		_, err := svc.Notify(context.Background(), userID, "hello")

		require.Error(t, err)
		assert.Empty(t, conn.events)
	})
}

func TestService_EventMessages(t *testing.T) {
	userID := uuid.New()

	type testCase struct {
		name    string
		fire    func(svc *notification.Service)
		wantMsg string
	}

	tests := []testCase{
		{
			name:    "BudgetExceeded",
			fire:    func(svc *notification.Service) { svc.BudgetExceeded(context.Background(), userID, "groceries") },
			wantMsg: "You have exceeded the budget for groceries",
		},
		{
			name:    "GoalAchieved",
			fire:    func(svc *notification.Service) { svc.GoalAchieved(context.Background(), userID, "Vacation") },
			wantMsg: "You have acheived the completion of Vacation financial goal",
		},
		{
			name:    "GoalExpired",
			fire:    func(svc *notification.Service) { svc.GoalExpired(context.Background(), userID, "Vacation") },
			wantMsg: "The deadline for Vacation financial goal has expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := notification.NewMockRepository(ctrl)

			var stored string

			repo.EXPECT().
				CreateNotification(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, n *notification.Notification) error {
					stored = n.Message
					return nil
				})

			tt.fire(notification.NewService(repo, realtime.NewRegistry()))

			assert.Equal(t, tt.wantMsg, stored)
		})
	}
}

func TestService_EventHelpersSwallowErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := notification.NewMockRepository(ctrl)

	repo.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(errors.New("db error"))

	svc := notification.NewService(repo, realtime.NewRegistry())

	// Must not panic or propagate.
	svc.BudgetExceeded(context.Background(), uuid.New(), "groceries")
}
