package service

import (
	"context"
	"testing"

	"github.com/Dhoini/Subscription-service/internal/domain"
	"github.com/Dhoini/Subscription-service/internal/repository"
	"github.com/Dhoini/Subscription-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubscriptionService() (SubscriptionService, *repository.InMemoryUserRepository) {
	repo := repository.NewInMemoryUserRepository()
	log := logger.New(logger.ERROR)
	return NewSubscriptionService(repo, nil, nil, log), repo
}

func TestSubscriptionService_CreateUser_StartsUnsubscribed(t *testing.T) {
	svc, _ := newTestSubscriptionService()

	rec, err := svc.CreateUser(context.Background(), "", "user-1", "user1@example.com")
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultAppID, rec.AppID)
	assert.Equal(t, "user-1", rec.UserID)
	assert.False(t, rec.IsSubscribed)
	assert.Empty(t, rec.PaymentStatus)
}

func TestSubscriptionService_CreateUser_RequiresIDAndEmail(t *testing.T) {
	svc, _ := newTestSubscriptionService()

	_, err := svc.CreateUser(context.Background(), "", "", "user1@example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateUser(context.Background(), "", "user-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubscriptionService_CreateUser_OverwritesExisting(t *testing.T) {
	svc, _ := newTestSubscriptionService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "app-1", "user-1", "user1@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.MarkSubscribed(ctx, "app-1", "user-1", "cs_test_1"))

	// Повторное создание пользователя сбрасывает состояние подписки
	rec, err := svc.CreateUser(ctx, "app-1", "user-1", "new@example.com")
	require.NoError(t, err)
	assert.False(t, rec.IsSubscribed)
	assert.Equal(t, "new@example.com", rec.Email)
}

func TestSubscriptionService_GetStatus_AutoProvisionsUnknownUser(t *testing.T) {
	svc, repo := newTestSubscriptionService()
	ctx := context.Background()

	rec, err := svc.GetStatus(ctx, "app-1", "ghost")
	require.NoError(t, err)
	assert.False(t, rec.IsSubscribed)

	// Запись сохраняется после запроса статуса
	stored, err := repo.Get(ctx, "app-1", "ghost")
	require.NoError(t, err)
	assert.False(t, stored.IsSubscribed)
}

func TestSubscriptionService_GetStatus_DoesNotResetSubscribedUser(t *testing.T) {
	svc, _ := newTestSubscriptionService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "", "user-1", "user1@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.MarkSubscribed(ctx, "", "user-1", "cs_test_1"))

	rec, err := svc.GetStatus(ctx, "", "user-1")
	require.NoError(t, err)
	assert.True(t, rec.IsSubscribed)
}

func TestSubscriptionService_MarkSubscribed_Transition(t *testing.T) {
	svc, _ := newTestSubscriptionService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "", "user-1", "user1@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.MarkSubscribed(ctx, "", "user-1", "cs_test_42"))

	rec, err := svc.GetStatus(ctx, "", "user-1")
	require.NoError(t, err)
	assert.True(t, rec.IsSubscribed)
	assert.Equal(t, domain.PaymentStatusPaid, rec.PaymentStatus)
	assert.Equal(t, "cs_test_42", rec.StripeSessionID)
	require.NotNil(t, rec.LastPaymentDate)
}

func TestSubscriptionService_MarkSubscribed_Idempotent(t *testing.T) {
	svc, _ := newTestSubscriptionService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "", "user-1", "user1@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.MarkSubscribed(ctx, "", "user-1", "cs_test_1"))
	require.NoError(t, svc.MarkSubscribed(ctx, "", "user-1", "cs_test_1"))

	rec, err := svc.GetStatus(ctx, "", "user-1")
	require.NoError(t, err)
	assert.True(t, rec.IsSubscribed)
}

func TestSubscriptionService_MarkSubscribed_UnknownUserIsNoOp(t *testing.T) {
	svc, repo := newTestSubscriptionService()
	ctx := context.Background()

	// Событие для неизвестного пользователя подтверждается без ошибки
	require.NoError(t, svc.MarkSubscribed(ctx, "", "ghost", "cs_test_1"))

	_, err := repo.Get(ctx, domain.DefaultAppID, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubscriptionService_SetSubscribed_UnknownUser(t *testing.T) {
	svc, _ := newTestSubscriptionService()

	err := svc.SetSubscribed(context.Background(), "", "ghost", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubscriptionService_AppsAreIsolated(t *testing.T) {
	svc, _ := newTestSubscriptionService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "app-a", "user-1", "user1@example.com")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "app-b", "user-1", "user1@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.MarkSubscribed(ctx, "app-a", "user-1", "cs_test_1"))

	recA, err := svc.GetStatus(ctx, "app-a", "user-1")
	require.NoError(t, err)
	recB, err := svc.GetStatus(ctx, "app-b", "user-1")
	require.NoError(t, err)

	assert.True(t, recA.IsSubscribed)
	assert.False(t, recB.IsSubscribed)
}
