package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/events"
	apperrors "github.com/carelink/care-service/pkg/util"
)

type moderationFixture struct {
	accounts      *fakeAccountRepo
	audit         *fakeAuditRepo
	notifications *fakeNotificationRepo
	dispatcher    *recordingDispatcher
	service       *ModerationService
	adminID       string
}

func newModerationFixture(t *testing.T) *moderationFixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	audit := &fakeAuditRepo{}
	notifications := &fakeNotificationRepo{}
	dispatcher := &recordingDispatcher{}
	svc := NewModerationService(ModerationDependencies{
		AccountRepo:      accounts,
		AuditRepo:        audit,
		NotificationRepo: notifications,
		Dispatcher:       dispatcher,
		Logger:           testLogger(),
	})
	adminID := accounts.add(domain.Account{Role: domain.RoleAdmin, Status: domain.AccountStatusActive, Email: "admin@example.com"})
	return &moderationFixture{
		accounts:      accounts,
		audit:         audit,
		notifications: notifications,
		dispatcher:    dispatcher,
		service:       svc,
		adminID:       adminID,
	}
}

func (f *moderationFixture) addAccount(role domain.Role, status domain.AccountStatus) string {
	return f.accounts.add(domain.Account{Role: role, Status: status})
}

func assertDomainError(t *testing.T, err error, code string, status int) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
	assert.Equal(t, status, domainErr.HTTPStatus)
}

func TestSuspendRejectsInvalidDurations(t *testing.T) {
	f := newModerationFixture(t)
	targetID := f.addAccount(domain.RoleVolunteer, domain.AccountStatusActive)

	for _, days := range []int{0, 1, 14, 31, 89, 91, -7} {
		_, err := f.service.Suspend(context.Background(), f.adminID, targetID, days, "spam")
		assertDomainError(t, err, "VALIDATION_FAILED", 400)
	}
	assert.Empty(t, f.audit.entries)
}

func TestSuspendSetsWindowAndAudits(t *testing.T) {
	f := newModerationFixture(t)
	targetID := f.addAccount(domain.RoleVolunteer, domain.AccountStatusActive)

	before := time.Now()
	account, err := f.service.Suspend(context.Background(), f.adminID, targetID, 30, "repeated no-shows")
	require.NoError(t, err)

	assert.Equal(t, domain.AccountStatusSuspended, account.Status)
	require.NotNil(t, account.SuspensionEnd)
	require.NotNil(t, account.SuspensionDays)
	assert.Equal(t, 30, *account.SuspensionDays)
	assert.WithinDuration(t, before.AddDate(0, 0, 30), *account.SuspensionEnd, time.Minute)

	stored, err := f.accounts.GetByID(context.Background(), targetID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusSuspended, stored.Status)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, domain.AuditSuspendUser, f.audit.entries[0].Action)
	assert.Equal(t, f.adminID, f.audit.entries[0].ActorID)
	assert.Equal(t, targetID, f.audit.entries[0].TargetID)

	published := f.dispatcher.byType(events.EventAccountSuspended)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.AccountStatusPayload)
	require.True(t, ok)
	assert.Equal(t, targetID, payload.AccountID)
	assert.Equal(t, 30, payload.Days)
}

func TestSuspendGuards(t *testing.T) {
	f := newModerationFixture(t)
	otherAdmin := f.addAccount(domain.RoleAdmin, domain.AccountStatusActive)
	caregiverID := f.addAccount(domain.RoleCaregiver, domain.AccountStatusActive)
	suspendedID := f.addAccount(domain.RoleElderly, domain.AccountStatusSuspended)

	_, err := f.service.Suspend(context.Background(), f.adminID, otherAdmin, 7, "x")
	assertDomainError(t, err, "NOT_ELIGIBLE", 400)

	_, err = f.service.Suspend(context.Background(), f.adminID, f.adminID, 7, "x")
	assertDomainError(t, err, "NOT_ELIGIBLE", 400)

	_, err = f.service.Suspend(context.Background(), f.adminID, caregiverID, 7, "x")
	assertDomainError(t, err, "NOT_ELIGIBLE", 400)

	_, err = f.service.Suspend(context.Background(), f.adminID, suspendedID, 7, "x")
	assertDomainError(t, err, "NOT_ELIGIBLE", 400)

	_, err = f.service.Suspend(context.Background(), f.adminID, "missing", 7, "x")
	assertDomainError(t, err, "NOT_FOUND", 404)
}

func TestUnsuspendClearsFieldsAndDefaultsReason(t *testing.T) {
	f := newModerationFixture(t)
	targetID := f.addAccount(domain.RoleElderly, domain.AccountStatusActive)
	_, err := f.service.Suspend(context.Background(), f.adminID, targetID, 7, "abuse")
	require.NoError(t, err)

	account, err := f.service.Unsuspend(context.Background(), f.adminID, targetID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusActive, account.Status)
	assert.Nil(t, account.SuspensionReason)
	assert.Nil(t, account.SuspendedAt)
	assert.Nil(t, account.SuspensionDays)
	assert.Nil(t, account.SuspensionEnd)

	require.Len(t, f.audit.entries, 2)
	assert.Equal(t, DefaultUnsuspendReason, f.audit.entries[1].Metadata["reason"])
}

func TestUnsuspendRequiresSuspendedStatus(t *testing.T) {
	f := newModerationFixture(t)
	activeID := f.addAccount(domain.RoleVolunteer, domain.AccountStatusActive)

	_, err := f.service.Unsuspend(context.Background(), f.adminID, activeID, "")
	assertDomainError(t, err, "NOT_ELIGIBLE", 400)
}

func TestDeactivateAndReactivate(t *testing.T) {
	f := newModerationFixture(t)
	targetID := f.addAccount(domain.RoleVolunteer, domain.AccountStatusActive)

	account, err := f.service.Deactivate(context.Background(), f.adminID, targetID, "left the platform")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusDeactivated, account.Status)
	require.NotNil(t, account.DeactivationReason)

	// reactivating anything but a deactivated account fails
	activeID := f.addAccount(domain.RoleVolunteer, domain.AccountStatusActive)
	_, err = f.service.Reactivate(context.Background(), f.adminID, activeID)
	assertDomainError(t, err, "NOT_ELIGIBLE", 400)

	account, err = f.service.Reactivate(context.Background(), f.adminID, targetID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusActive, account.Status)
	assert.Nil(t, account.DeactivationReason)
	assert.Nil(t, account.DeactivatedAt)

	assert.Equal(t, domain.AuditReactivateUser, f.audit.lastAction())
}

func TestDeactivateRequiresActiveStatus(t *testing.T) {
	f := newModerationFixture(t)
	suspendedID := f.addAccount(domain.RoleElderly, domain.AccountStatusSuspended)

	_, err := f.service.Deactivate(context.Background(), f.adminID, suspendedID, "x")
	assertDomainError(t, err, "NOT_ELIGIBLE", 400)
}

func TestDeleteAccountWritesAuditBeforeRemoval(t *testing.T) {
	f := newModerationFixture(t)
	targetID := f.addAccount(domain.RoleElderly, domain.AccountStatusActive)
	f.notifications.notifications = append(f.notifications.notifications, domain.Notification{
		ID: "notif-1", RecipientID: targetID,
	})

	err := f.service.DeleteAccount(context.Background(), f.adminID, targetID, "gdpr request")
	require.NoError(t, err)

	_, err = f.accounts.GetByID(context.Background(), targetID)
	assert.Error(t, err)
	assert.Empty(t, f.notifications.forRecipient(targetID))

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, domain.AuditDeleteUser, f.audit.entries[0].Action)
	assert.Equal(t, "gdpr request", f.audit.entries[0].Metadata["reason"])
}

func TestDeleteAccountNeverTargetsAdmins(t *testing.T) {
	f := newModerationFixture(t)
	otherAdmin := f.addAccount(domain.RoleAdmin, domain.AccountStatusActive)

	err := f.service.DeleteAccount(context.Background(), f.adminID, otherAdmin, "x")
	assertDomainError(t, err, "NOT_ELIGIBLE", 400)
}

func TestAuditFailureDoesNotBlockSuspension(t *testing.T) {
	f := newModerationFixture(t)
	f.audit.createErr = errors.New("audit store down")
	targetID := f.addAccount(domain.RoleVolunteer, domain.AccountStatusActive)

	account, err := f.service.Suspend(context.Background(), f.adminID, targetID, 7, "spam")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusSuspended, account.Status)
}

func TestUnsuspendIfExpired(t *testing.T) {
	f := newModerationFixture(t)
	pastEnd := time.Now().Add(-time.Hour)
	startedAt := pastEnd.AddDate(0, 0, -7)
	days := 7
	reason := "spam"
	expiredID := f.accounts.add(domain.Account{
		Role:             domain.RoleVolunteer,
		Status:           domain.AccountStatusSuspended,
		SuspensionReason: &reason,
		SuspendedAt:      &startedAt,
		SuspensionDays:   &days,
		SuspensionEnd:    &pastEnd,
	})

	account, err := f.service.UnsuspendIfExpired(context.Background(), expiredID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusActive, account.Status)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, domain.SystemActor, f.audit.entries[0].ActorID)
	assert.Equal(t, DefaultUnsuspendReason, f.audit.entries[0].Metadata["reason"])
}

func TestUnsuspendIfExpiredLeavesRunningSuspensions(t *testing.T) {
	f := newModerationFixture(t)
	futureEnd := time.Now().Add(24 * time.Hour)
	days := 7
	suspendedID := f.accounts.add(domain.Account{
		Role:           domain.RoleVolunteer,
		Status:         domain.AccountStatusSuspended,
		SuspensionDays: &days,
		SuspensionEnd:  &futureEnd,
	})

	account, err := f.service.UnsuspendIfExpired(context.Background(), suspendedID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusSuspended, account.Status)
	assert.Empty(t, f.audit.entries)
}

func TestExpireSuspensionsSweep(t *testing.T) {
	f := newModerationFixture(t)
	pastEnd := time.Now().Add(-time.Minute)
	futureEnd := time.Now().Add(time.Hour)
	for i := 0; i < 3; i++ {
		end := pastEnd
		f.accounts.add(domain.Account{Role: domain.RoleVolunteer, Status: domain.AccountStatusSuspended, SuspensionEnd: &end})
	}
	f.accounts.add(domain.Account{Role: domain.RoleElderly, Status: domain.AccountStatusSuspended, SuspensionEnd: &futureEnd})

	count, err := f.service.ExpireSuspensions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Len(t, f.dispatcher.byType(events.EventAccountUnsuspended), 3)
}

func TestBroadcastValidatesMessage(t *testing.T) {
	f := newModerationFixture(t)

	err := f.service.Broadcast(context.Background(), f.adminID, nil, "  ")
	assertDomainError(t, err, "VALIDATION_FAILED", 400)

	role := domain.RoleVolunteer
	require.NoError(t, f.service.Broadcast(context.Background(), f.adminID, &role, "maintenance tonight"))
	assert.Equal(t, domain.AuditBroadcast, f.audit.lastAction())
	assert.Equal(t, string(domain.RoleVolunteer), f.audit.entries[len(f.audit.entries)-1].TargetID)
	require.Len(t, f.dispatcher.byType(events.EventSystemBroadcast), 1)
}
