package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/carelink/care-service/internal/domain"
	"github.com/carelink/care-service/internal/events"
	"github.com/carelink/care-service/internal/repository"
)

// In-memory repository doubles. Reads hand out copies so state only
// changes when the service calls Update, matching the real store.

type fakeAccountRepo struct {
	mu        sync.Mutex
	seq       int
	accounts  map[string]domain.Account
	updateErr error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]domain.Account{}}
}

func (f *fakeAccountRepo) add(account domain.Account) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account.ID == "" {
		f.seq++
		account.ID = fmt.Sprintf("acc-%d", f.seq)
	}
	f.accounts[account.ID] = account
	return account.ID
}

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	account.ID = f.add(*account)
	account.CreatedAt = time.Now()
	return nil
}

func (f *fakeAccountRepo) Update(_ context.Context, account *domain.Account) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.accounts[account.ID]; !exists {
		return pgx.ErrNoRows
	}
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, exists := f.accounts[id]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	copied := account
	return &copied, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			copied := account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.accounts[id]; !exists {
		return pgx.ErrNoRows
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeAccountRepo) ListWithFilter(_ context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Account
	for _, account := range f.accounts {
		if len(filter.Roles) > 0 && !containsRole(filter.Roles, account.Role) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, account.Status) {
			continue
		}
		if filter.Search != nil && !strings.Contains(strings.ToLower(account.Name+account.Email), strings.ToLower(*filter.Search)) {
			continue
		}
		result = append(result, account)
	}
	return result, nil
}

func (f *fakeAccountRepo) ListExpiredSuspensions(_ context.Context, now time.Time) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Account
	for _, account := range f.accounts {
		copied := account
		if copied.SuspensionExpired(now) {
			result = append(result, copied)
		}
	}
	return result, nil
}

func (f *fakeAccountRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Account
	for _, account := range f.accounts {
		if account.Role == role {
			result = append(result, account)
		}
	}
	return result, nil
}

func (f *fakeAccountRepo) ListAll(_ context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		result = append(result, account)
	}
	return result, nil
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func containsStatus(statuses []domain.AccountStatus, status domain.AccountStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeAuditRepo struct {
	mu        sync.Mutex
	entries   []domain.AuditLogEntry
	createErr error
}

func (f *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLogEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = fmt.Sprintf("audit-%d", len(f.entries)+1)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, limit, offset int) ([]domain.AuditLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AuditLogEntry{}, f.entries...), nil
}

func (f *fakeAuditRepo) ListByTarget(_ context.Context, targetID string, limit, offset int) ([]domain.AuditLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.AuditLogEntry
	for _, entry := range f.entries {
		if entry.TargetID == targetID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeAuditRepo) lastAction() domain.AuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return ""
	}
	return f.entries[len(f.entries)-1].Action
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
	createErr     error
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	notification.ID = fmt.Sprintf("notif-%d", len(f.notifications)+1)
	notification.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Notification
	for _, notification := range f.notifications {
		if notification.RecipientID != recipientID {
			continue
		}
		if unreadOnly && notification.Read {
			continue
		}
		result = append(result, notification)
	}
	return result, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, recipientID, notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == notificationID && f.notifications[i].RecipientID == recipientID {
			f.notifications[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].RecipientID == recipientID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) DeleteByRecipient(_ context.Context, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.notifications[:0]
	for _, notification := range f.notifications {
		if notification.RecipientID != recipientID {
			kept = append(kept, notification)
		}
	}
	f.notifications = kept
	return nil
}

func (f *fakeNotificationRepo) forRecipient(recipientID string) []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Notification
	for _, notification := range f.notifications {
		if notification.RecipientID == recipientID {
			result = append(result, notification)
		}
	}
	return result
}

type fakeReportRepo struct {
	mu      sync.Mutex
	seq     int
	reports map[string]domain.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[string]domain.Report{}}
}

func (f *fakeReportRepo) add(report domain.Report) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if report.ID == "" {
		f.seq++
		report.ID = fmt.Sprintf("report-%d", f.seq)
	}
	f.reports[report.ID] = report
	return report.ID
}

func (f *fakeReportRepo) Create(_ context.Context, report *domain.Report) error {
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt
	report.ID = f.add(*report)
	return nil
}

func (f *fakeReportRepo) Update(_ context.Context, report *domain.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.reports[report.ID]; !exists {
		return pgx.ErrNoRows
	}
	report.UpdatedAt = time.Now()
	f.reports[report.ID] = *report
	return nil
}

func (f *fakeReportRepo) GetByID(_ context.Context, id string) (*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, exists := f.reports[id]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	copied := report
	return &copied, nil
}

func (f *fakeReportRepo) ListByReporter(_ context.Context, reporterID string, limit, offset int) ([]domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Report
	for _, report := range f.reports {
		if report.ReporterID == reporterID {
			result = append(result, report)
		}
	}
	return result, nil
}

func (f *fakeReportRepo) ListWithFilter(_ context.Context, filter repository.ReportFilter) ([]domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Report
	for _, report := range f.reports {
		if filter.ReportedID != nil && report.ReportedID != *filter.ReportedID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if report.Status == status {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, report)
	}
	return result, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	changes []domain.ReportStatusChange
}

func (f *fakeHistoryRepo) Create(_ context.Context, change *domain.ReportStatusChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	change.ID = fmt.Sprintf("hist-%d", len(f.changes)+1)
	change.CreatedAt = time.Now()
	f.changes = append(f.changes, *change)
	return nil
}

func (f *fakeHistoryRepo) ListByReport(_ context.Context, reportID string) ([]domain.ReportStatusChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.ReportStatusChange
	for _, change := range f.changes {
		if change.ReportID == reportID {
			result = append(result, change)
		}
	}
	return result, nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	seq     int
	reviews map[string]domain.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[string]domain.Review{}}
}

func (f *fakeReviewRepo) Create(_ context.Context, review *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	review.ID = fmt.Sprintf("review-%d", f.seq)
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	f.reviews[review.ID] = *review
	return nil
}

func (f *fakeReviewRepo) Update(_ context.Context, review *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.reviews[review.ID]; !exists {
		return pgx.ErrNoRows
	}
	f.reviews[review.ID] = *review
	return nil
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id string) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	review, exists := f.reviews[id]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	copied := review
	return &copied, nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.reviews[id]; !exists {
		return pgx.ErrNoRows
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) ListByRecipient(_ context.Context, recipientID string, limit, offset int) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Review
	for _, review := range f.reviews {
		if review.RecipientID == recipientID {
			result = append(result, review)
		}
	}
	return result, nil
}

func (f *fakeReviewRepo) GetByRequestAndAuthor(_ context.Context, requestID, authorID string) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, review := range f.reviews {
		if review.HelpRequestID == requestID && review.AuthorID == authorID {
			copied := review
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	seq      int
	requests map[string]domain.HelpRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]domain.HelpRequest{}}
}

func (f *fakeRequestRepo) add(request domain.HelpRequest) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if request.ID == "" {
		f.seq++
		request.ID = fmt.Sprintf("req-%d", f.seq)
	}
	f.requests[request.ID] = request
	return request.ID
}

func (f *fakeRequestRepo) Create(_ context.Context, request *domain.HelpRequest) error {
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	request.ID = f.add(*request)
	return nil
}

func (f *fakeRequestRepo) Update(_ context.Context, request *domain.HelpRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.requests[request.ID]; !exists {
		return pgx.ErrNoRows
	}
	f.requests[request.ID] = *request
	return nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (*domain.HelpRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, exists := f.requests[id]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	copied := request
	return &copied, nil
}

func (f *fakeRequestRepo) ListOpen(_ context.Context, limit, offset int) ([]domain.HelpRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.HelpRequest
	for _, request := range f.requests {
		if request.Status == domain.HelpRequestStatusOpen {
			result = append(result, request)
		}
	}
	return result, nil
}

func (f *fakeRequestRepo) ListByElderly(_ context.Context, elderlyID string, limit, offset int) ([]domain.HelpRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.HelpRequest
	for _, request := range f.requests {
		if request.ElderlyID == elderlyID {
			result = append(result, request)
		}
	}
	return result, nil
}

func (f *fakeRequestRepo) ListByVolunteer(_ context.Context, volunteerID string, limit, offset int) ([]domain.HelpRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.HelpRequest
	for _, request := range f.requests {
		if request.VolunteerID != nil && *request.VolunteerID == volunteerID {
			result = append(result, request)
		}
	}
	return result, nil
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	links []domain.CareLink
}

func (f *fakeLinkRepo) Create(_ context.Context, link *domain.CareLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	link.ID = fmt.Sprintf("link-%d", len(f.links)+1)
	link.CreatedAt = time.Now()
	f.links = append(f.links, *link)
	return nil
}

func (f *fakeLinkRepo) Delete(_ context.Context, caregiverID, elderlyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, link := range f.links {
		if link.CaregiverID == caregiverID && link.ElderlyID == elderlyID {
			f.links = append(f.links[:i], f.links[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeLinkRepo) GetByPair(_ context.Context, caregiverID, elderlyID string) (*domain.CareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, link := range f.links {
		if link.CaregiverID == caregiverID && link.ElderlyID == elderlyID {
			copied := link
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeLinkRepo) ListCaregivers(_ context.Context, elderlyID string) ([]domain.CareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.CareLink
	for _, link := range f.links {
		if link.ElderlyID == elderlyID {
			result = append(result, link)
		}
	}
	return result, nil
}

func (f *fakeLinkRepo) ListElderly(_ context.Context, caregiverID string) ([]domain.CareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.CareLink
	for _, link := range f.links {
		if link.CaregiverID == caregiverID {
			result = append(result, link)
		}
	}
	return result, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

// fakePusher records realtime emissions and can simulate failures.
type fakePusher struct {
	mu      sync.Mutex
	emitted []string
	emitErr error
}

func (p *fakePusher) Emit(_ context.Context, recipientID string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emitted = append(p.emitted, recipientID)
	return p.emitErr
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
