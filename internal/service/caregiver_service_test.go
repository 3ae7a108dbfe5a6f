package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/events"
)

func newCaregiverFixture(t *testing.T) (*CaregiverService, *fakeAccountRepo, *fakeLinkRepo, *recordingDispatcher) {
	t.Helper()
	accounts := newFakeAccountRepo()
	links := &fakeLinkRepo{}
	dispatcher := &recordingDispatcher{}
	svc := NewCaregiverService(CaregiverDependencies{
		LinkRepo:    links,
		AccountRepo: accounts,
		Dispatcher:  dispatcher,
	})
	return svc, accounts, links, dispatcher
}

func TestGeneratePinIsSixDigits(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		pin, err := generatePin()
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), pin)
		seen[pin] = true
	}
	// collisions over 50 draws from a million values would be suspicious
	assert.Greater(t, len(seen), 40)
}

func TestUnlinkRemovesPairAndPublishes(t *testing.T) {
	svc, _, links, dispatcher := newCaregiverFixture(t)
	require.NoError(t, links.Create(context.Background(), &domain.CareLink{CaregiverID: "cg-1", ElderlyID: "eld-1"}))

	require.NoError(t, svc.Unlink(context.Background(), "cg-1", "eld-1"))
	_, err := links.GetByPair(context.Background(), "cg-1", "eld-1")
	assert.Error(t, err)
	require.Len(t, dispatcher.byType(events.EventCareLinkRemoved), 1)

	err = svc.Unlink(context.Background(), "cg-1", "eld-1")
	assertDomainError(t, err, "NOT_FOUND", 404)
}

func TestLinkedElderlySkipsDeletedAccounts(t *testing.T) {
	svc, accounts, links, _ := newCaregiverFixture(t)
	elderlyID := accounts.add(domain.Account{Role: domain.RoleElderly, Status: domain.AccountStatusActive, Name: "Ada"})
	require.NoError(t, links.Create(context.Background(), &domain.CareLink{CaregiverID: "cg-1", ElderlyID: elderlyID}))
	require.NoError(t, links.Create(context.Background(), &domain.CareLink{CaregiverID: "cg-1", ElderlyID: "gone"}))

	result, err := svc.LinkedElderly(context.Background(), "cg-1")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Ada", result[0].Name)
}

func TestLinkedCaregiversReturnsRecipientSet(t *testing.T) {
	svc, _, links, _ := newCaregiverFixture(t)
	require.NoError(t, links.Create(context.Background(), &domain.CareLink{CaregiverID: "cg-1", ElderlyID: "eld-1"}))
	require.NoError(t, links.Create(context.Background(), &domain.CareLink{CaregiverID: "cg-2", ElderlyID: "eld-1"}))
	require.NoError(t, links.Create(context.Background(), &domain.CareLink{CaregiverID: "cg-3", ElderlyID: "eld-2"}))

	ids, err := svc.LinkedCaregivers(context.Background(), "eld-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cg-1", "cg-2"}, ids)
}
