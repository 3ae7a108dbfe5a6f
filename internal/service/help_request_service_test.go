package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/events"
)

func newRequestService() (*HelpRequestService, *fakeRequestRepo, *recordingDispatcher) {
	requests := newFakeRequestRepo()
	dispatcher := &recordingDispatcher{}
	return NewHelpRequestService(requests, dispatcher), requests, dispatcher
}

func TestCreateHelpRequestValidation(t *testing.T) {
	svc, _, _ := newRequestService()

	_, err := svc.Create(context.Background(), "elderly-1", HelpRequestCreateInput{Title: "  ", Description: "x"})
	assertDomainError(t, err, "VALIDATION_FAILED", 400)

	request, err := svc.Create(context.Background(), "elderly-1", HelpRequestCreateInput{
		Title: " groceries ", Description: "weekly shop", Category: "errand",
	})
	require.NoError(t, err)
	assert.Equal(t, "groceries", request.Title)
	assert.Equal(t, domain.HelpRequestStatusOpen, request.Status)
}

func TestAcceptAssignsFirstVolunteerOnly(t *testing.T) {
	svc, requests, dispatcher := newRequestService()
	requestID := requests.add(domain.HelpRequest{
		ElderlyID: "elderly-1", Title: "walk", Status: domain.HelpRequestStatusOpen,
	})

	request, err := svc.Accept(context.Background(), "vol-1", requestID)
	require.NoError(t, err)
	assert.Equal(t, domain.HelpRequestStatusAccepted, request.Status)
	require.NotNil(t, request.VolunteerID)
	assert.Equal(t, "vol-1", *request.VolunteerID)
	assert.NotNil(t, request.AcceptedAt)

	_, err = svc.Accept(context.Background(), "vol-2", requestID)
	assertDomainError(t, err, "CONFLICT", 409)

	stored, err := requests.GetByID(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, "vol-1", *stored.VolunteerID)

	require.Len(t, dispatcher.byType(events.EventRequestAccepted), 1)
}

func TestAcceptRefusesClosedRequests(t *testing.T) {
	svc, requests, _ := newRequestService()
	cancelledID := requests.add(domain.HelpRequest{
		ElderlyID: "elderly-1", Title: "walk", Status: domain.HelpRequestStatusCancelled,
	})

	_, err := svc.Accept(context.Background(), "vol-1", cancelledID)
	assertDomainError(t, err, "NOT_ELIGIBLE", 400)

	_, err = svc.Accept(context.Background(), "vol-1", "missing")
	assertDomainError(t, err, "NOT_FOUND", 404)
}

func TestCompleteOnlyByAssignedVolunteer(t *testing.T) {
	svc, requests, dispatcher := newRequestService()
	volunteerID := "vol-1"
	requestID := requests.add(domain.HelpRequest{
		ElderlyID: "elderly-1", VolunteerID: &volunteerID, Title: "walk",
		Status: domain.HelpRequestStatusAccepted,
	})

	_, err := svc.Complete(context.Background(), "vol-2", requestID)
	assertDomainError(t, err, "FORBIDDEN", 403)

	request, err := svc.Complete(context.Background(), volunteerID, requestID)
	require.NoError(t, err)
	assert.Equal(t, domain.HelpRequestStatusCompleted, request.Status)
	assert.NotNil(t, request.CompletedAt)

	require.Len(t, dispatcher.byType(events.EventRequestCompleted), 1)
}

func TestCompleteRequiresAcceptedStatus(t *testing.T) {
	svc, requests, _ := newRequestService()
	requestID := requests.add(domain.HelpRequest{
		ElderlyID: "elderly-1", Title: "walk", Status: domain.HelpRequestStatusOpen,
	})

	_, err := svc.Complete(context.Background(), "vol-1", requestID)
	assertDomainError(t, err, "NOT_ELIGIBLE", 400)
}

func TestCancelOnlyOpenRequestsByAuthor(t *testing.T) {
	svc, requests, _ := newRequestService()
	requestID := requests.add(domain.HelpRequest{
		ElderlyID: "elderly-1", Title: "walk", Status: domain.HelpRequestStatusOpen,
	})

	_, err := svc.Cancel(context.Background(), "elderly-2", requestID)
	assertDomainError(t, err, "FORBIDDEN", 403)

	request, err := svc.Cancel(context.Background(), "elderly-1", requestID)
	require.NoError(t, err)
	assert.Equal(t, domain.HelpRequestStatusCancelled, request.Status)

	volunteerID := "vol-1"
	acceptedID := requests.add(domain.HelpRequest{
		ElderlyID: "elderly-1", VolunteerID: &volunteerID, Title: "shop",
		Status: domain.HelpRequestStatusAccepted,
	})
	_, err = svc.Cancel(context.Background(), "elderly-1", acceptedID)
	assertDomainError(t, err, "NOT_ELIGIBLE", 400)
}

func TestListMineByRole(t *testing.T) {
	svc, requests, _ := newRequestService()
	volunteerID := "vol-1"
	requests.add(domain.HelpRequest{ElderlyID: "elderly-1", Title: "a", Status: domain.HelpRequestStatusOpen})
	requests.add(domain.HelpRequest{ElderlyID: "elderly-2", VolunteerID: &volunteerID, Title: "b", Status: domain.HelpRequestStatusAccepted})

	mine, err := svc.ListMine(context.Background(), &domain.Account{ID: "elderly-1", Role: domain.RoleElderly}, 20, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a", mine[0].Title)

	assigned, err := svc.ListMine(context.Background(), &domain.Account{ID: volunteerID, Role: domain.RoleVolunteer}, 20, 0)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "b", assigned[0].Title)
}
