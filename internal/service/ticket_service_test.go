package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitydesk/helpdesk-service/internal/domain"
	"github.com/facilitydesk/helpdesk-service/internal/events"
	"github.com/facilitydesk/helpdesk-service/internal/location"
	"github.com/facilitydesk/helpdesk-service/internal/policy"
	"github.com/facilitydesk/helpdesk-service/internal/repository"
	apperrors "github.com/facilitydesk/helpdesk-service/pkg/util"
)

func ptr[T any](v T) *T { return &v }

type fakeTicketRepo struct {
	tickets    map[int64]*domain.Ticket
	nextID     int64
	failUpdate error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[int64]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = r.nextID
	ticket.Version = 1
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if r.failUpdate != nil {
		err := r.failUpdate
		r.failUpdate = nil
		return err
	}
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	ticket.Version++
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeTicketRepo) GetByExternalKey(_ context.Context, key string) (*domain.Ticket, error) {
	for _, stored := range r.tickets {
		if stored.ExternalKey == key {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if filter.MatchNone {
		return nil, nil
	}
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if filter.CreatedBy != nil && stored.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.AssigneeOrUnassigned != nil &&
			stored.AssigneeID != nil && *stored.AssigneeID != *filter.AssigneeOrUnassigned {
			continue
		}
		if filter.DepartmentID != nil &&
			(stored.DepartmentID == nil || *stored.DepartmentID != *filter.DepartmentID) {
			continue
		}
		result = append(result, *stored)
	}
	return result, nil
}

type fakeCommentRepo struct {
	comments map[int64][]domain.Comment
	nextID   int64
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.nextID++
	comment.ID = r.nextID
	r.comments[comment.TicketID] = append(r.comments[comment.TicketID], *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Comment, error) {
	return r.comments[ticketID], nil
}

func (r *fakeCommentRepo) DeleteByTicket(_ context.Context, ticketID int64) error {
	delete(r.comments, ticketID)
	return nil
}

type fakeAttachmentRepo struct {
	attachments map[int64][]domain.Attachment
	nextID      int64
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	r.nextID++
	attachment.ID = r.nextID
	r.attachments[attachment.TicketID] = append(r.attachments[attachment.TicketID], *attachment)
	return nil
}

func (r *fakeAttachmentRepo) GetByID(_ context.Context, id int64) (*domain.Attachment, error) {
	for _, list := range r.attachments {
		for _, a := range list {
			if a.ID == id {
				return &a, nil
			}
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Attachment, error) {
	return r.attachments[ticketID], nil
}

func (r *fakeAttachmentRepo) DeleteByTicket(_ context.Context, ticketID int64) error {
	delete(r.attachments, ticketID)
	return nil
}

type fakeHistoryRepo struct {
	entries map[int64][]domain.TicketHistory
	nextID  int64
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.TicketHistory) error {
	r.nextID++
	entry.ID = r.nextID
	r.entries[entry.TicketID] = append(r.entries[entry.TicketID], *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID int64, _, _ int) ([]domain.TicketHistory, error) {
	return r.entries[ticketID], nil
}

func (r *fakeHistoryRepo) DeleteByTicket(_ context.Context, ticketID int64) error {
	delete(r.entries, ticketID)
	return nil
}

type fakeDepartmentRepo struct {
	departments map[int64]*domain.Department
}

func (r *fakeDepartmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	dept, ok := r.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return dept, nil
}

func (r *fakeDepartmentRepo) ListActive(_ context.Context) ([]domain.Department, error) {
	var result []domain.Department
	for _, dept := range r.departments {
		if dept.IsActive {
			result = append(result, *dept)
		}
	}
	return result, nil
}

type fakeLocationRepo struct {
	nodes map[int64]*domain.LocationNode
}

func (f *fakeLocationRepo) GetByID(_ context.Context, level domain.LocationLevel, id int64) (*domain.LocationNode, error) {
	node, ok := f.nodes[id]
	if !ok || node.Level != level {
		return nil, pgx.ErrNoRows
	}
	return node, nil
}

func (f *fakeLocationRepo) FindChildByName(_ context.Context, level domain.LocationLevel, parentID *int64, name string) (*domain.LocationNode, error) {
	for _, node := range f.nodes {
		if node.Level != level || node.Name != name {
			continue
		}
		if parentID == nil && node.ParentID == nil {
			return node, nil
		}
		if parentID != nil && node.ParentID != nil && *parentID == *node.ParentID {
			return node, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeLocationRepo) ListChildren(_ context.Context, level domain.LocationLevel, parentID *int64) ([]domain.LocationNode, error) {
	var result []domain.LocationNode
	for _, node := range f.nodes {
		if node.Level != level {
			continue
		}
		if (parentID == nil) != (node.ParentID == nil) {
			continue
		}
		if parentID != nil && *parentID != *node.ParentID {
			continue
		}
		result = append(result, *node)
	}
	return result, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) typesSeen() []events.EventType {
	var types []events.EventType
	for _, e := range d.published {
		types = append(types, e.Type)
	}
	return types
}

type serviceFixture struct {
	service     *TicketService
	tickets     *fakeTicketRepo
	comments    *fakeCommentRepo
	attachments *fakeAttachmentRepo
	history     *fakeHistoryRepo
	dispatcher  *recordingDispatcher
}

func newFixture(maxUpload int64) *serviceFixture {
	locRepo := &fakeLocationRepo{nodes: map[int64]*domain.LocationNode{
		1:  {ID: 1, Level: domain.LevelBuilding, Name: "Budova A"},
		10: {ID: 10, Level: domain.LevelFloor, ParentID: ptr(int64(1)), Name: "1. patro"},
		20: {ID: 20, Level: domain.LevelRoom, ParentID: ptr(int64(10)), Name: "101 - Kancelář"},
		30: {ID: 30, Level: domain.LevelArea, ParentID: ptr(int64(20)), Name: "Elektroinstalace"},
		40: {ID: 40, Level: domain.LevelElement, ParentID: ptr(int64(30)), Name: "Osvětlení"},
	}}

	fixture := &serviceFixture{
		tickets:     newFakeTicketRepo(),
		comments:    &fakeCommentRepo{comments: map[int64][]domain.Comment{}},
		attachments: &fakeAttachmentRepo{attachments: map[int64][]domain.Attachment{}},
		history:     &fakeHistoryRepo{entries: map[int64][]domain.TicketHistory{}},
		dispatcher:  &recordingDispatcher{},
	}
	fixture.service = NewTicketService(TicketDependencies{
		TicketRepo:     fixture.tickets,
		CommentRepo:    fixture.comments,
		AttachmentRepo: fixture.attachments,
		HistoryRepo:    fixture.history,
		DepartmentRepo: &fakeDepartmentRepo{departments: map[int64]*domain.Department{
			1: {ID: 1, Name: "Facility", IsActive: true},
			2: {ID: 2, Name: "Disbanded", IsActive: false},
		}},
		Resolver:       location.NewResolver(locRepo),
		Dispatcher:     fixture.dispatcher,
		MaxUploadBytes: maxUpload,
	})
	return fixture
}

func validLocation() location.Input {
	return location.Input{
		Building: location.Selector{Name: "Budova A"},
		Floor:    location.Selector{Name: "1. patro"},
		Room:     location.Selector{Name: "101 - Kancelář"},
		Area:     location.Selector{Name: "Elektroinstalace"},
		Element:  location.Selector{Name: "Osvětlení"},
	}
}

var (
	submitter  = policy.Actor{ID: 10, Role: domain.RoleUser}
	technician = policy.Actor{ID: 30, Role: domain.RoleTechnician}
	manager    = policy.Actor{ID: 20, Role: domain.RoleManager, DepartmentID: ptr(int64(1))}
	admin      = policy.Actor{ID: 99, Role: domain.RoleAdmin}
)

func TestCreateForcesCreatorAndInitialStatus(t *testing.T) {
	fx := newFixture(0)

	ticket, err := fx.service.Create(context.Background(), submitter, TicketCreateInput{
		Title:       "Blikající zářivka",
		Description: "Zářivka nad stolem bliká",
		Category:    domain.TicketCategoryMaintenance,
		Status:      domain.TicketStatusAssigned, // must be ignored for plain users
		Location:    validLocation(),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), ticket.CreatedBy)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.True(t, strings.HasPrefix(ticket.ExternalKey, "TCK-"))
	assert.Equal(t, int64(40), ticket.Location.ElementID)
	assert.Equal(t, "Osvětlení", ticket.Location.ElementName)
	assert.Equal(t, []events.EventType{events.EventTicketCreated}, fx.dispatcher.typesSeen())
}

func TestCreateManagerMayPreTriage(t *testing.T) {
	fx := newFixture(0)

	ticket, err := fx.service.Create(context.Background(), manager, TicketCreateInput{
		Title:       "Prasklé potrubí",
		Description: "Voda na podlaze",
		Category:    domain.TicketCategoryMaintenance,
		Priority:    domain.TicketPriorityCritical,
		Status:      domain.TicketStatusAssigned,
		Location:    validLocation(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAssigned, ticket.Status)
	assert.Equal(t, domain.TicketPriorityCritical, ticket.Priority)
	// department defaults to the creator's when not supplied
	require.NotNil(t, ticket.DepartmentID)
	assert.Equal(t, int64(1), *ticket.DepartmentID)
}

func TestCreateValidation(t *testing.T) {
	fx := newFixture(0)
	ctx := context.Background()

	_, err := fx.service.Create(ctx, submitter, TicketCreateInput{
		Title: "  ", Description: "x", Category: domain.TicketCategoryIT, Location: validLocation(),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = fx.service.Create(ctx, submitter, TicketCreateInput{
		Title: "t", Description: "d", Category: "GARDENING", Location: validLocation(),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = fx.service.Create(ctx, submitter, TicketCreateInput{
		Title: "t", Description: "d", Category: domain.TicketCategoryIT,
		DepartmentID: ptr(int64(2)), Location: validLocation(),
	})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Message, "department inactive")

	// unresolvable location chain fails with the level that broke
	bad := validLocation()
	bad.Element = location.Selector{Name: "Klimatizace"}
	_, err = fx.service.Create(ctx, submitter, TicketCreateInput{
		Title: "t", Description: "d", Category: domain.TicketCategoryIT, Location: bad,
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "LOCATION_RESOLUTION_FAILED", domainErr.Code)
	assert.Equal(t, string(domain.LevelElement), domainErr.Details["level"])
}

func mustCreate(t *testing.T, fx *serviceFixture, actor policy.Actor) *domain.Ticket {
	t.Helper()
	ticket, err := fx.service.Create(context.Background(), actor, TicketCreateInput{
		Title:       "Nefunkční zásuvka",
		Description: "Zásuvka u okna je bez proudu",
		Category:    domain.TicketCategoryMaintenance,
		Location:    validLocation(),
	})
	require.NoError(t, err)
	return ticket
}

func TestUpdateUserDescriptiveFieldsOnly(t *testing.T) {
	fx := newFixture(0)
	ticket := mustCreate(t, fx, submitter)
	ctx := context.Background()

	updated, err := fx.service.Update(ctx, submitter, ticket.ID, TicketUpdateInput{
		Title: ptr("Nefunkční zásuvka u dveří"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Nefunkční zásuvka u dveří", updated.Title)

	// a single triage field rejects the whole payload
	_, err = fx.service.Update(ctx, submitter, ticket.ID, TicketUpdateInput{
		Title:    ptr("still mine"),
		Priority: ptr(domain.TicketPriorityHigh),
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	// another user's ticket is untouchable
	_, err = fx.service.Update(ctx, policy.Actor{ID: 11, Role: domain.RoleUser}, ticket.ID, TicketUpdateInput{
		Title: ptr("mine now"),
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestUpdateTechnicianAssignmentRules(t *testing.T) {
	fx := newFixture(0)
	ticket := mustCreate(t, fx, submitter)
	ctx := context.Background()

	// claim the unassigned ticket
	claimed, err := fx.service.Update(ctx, technician, ticket.ID, TicketUpdateInput{
		Status:     ptr(domain.TicketStatusAssigned),
		AssigneeID: ptr(technician.ID),
	})
	require.NoError(t, err)
	require.NotNil(t, claimed.AssigneeID)
	assert.Equal(t, technician.ID, *claimed.AssigneeID)
	assert.Equal(t, domain.TicketStatusAssigned, claimed.Status)

	// a different technician may not touch it anymore
	other := policy.Actor{ID: 31, Role: domain.RoleTechnician}
	_, err = fx.service.Update(ctx, other, ticket.ID, TicketUpdateInput{
		Status: ptr(domain.TicketStatusInProgress),
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestUpdateStatusTransitions(t *testing.T) {
	fx := newFixture(0)
	ticket := mustCreate(t, fx, submitter)
	ctx := context.Background()

	// OPEN -> CLOSED is not in the table
	_, err := fx.service.Update(ctx, manager, ticket.ID, TicketUpdateInput{
		Status: ptr(domain.TicketStatusClosed),
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Message, "invalid status transition")

	// admins bypass the table
	closed, err := fx.service.Update(ctx, admin, ticket.ID, TicketUpdateInput{
		Status: ptr(domain.TicketStatusClosed),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
}

func TestUpdateResolvedStampSetOnce(t *testing.T) {
	fx := newFixture(0)
	ticket := mustCreate(t, fx, submitter)
	ctx := context.Background()

	step := func(status domain.TicketStatus) *domain.Ticket {
		updated, err := fx.service.Update(ctx, manager, ticket.ID, TicketUpdateInput{Status: ptr(status)})
		require.NoError(t, err)
		return updated
	}

	step(domain.TicketStatusAssigned)
	step(domain.TicketStatusInProgress)
	resolved := step(domain.TicketStatusResolved)
	require.NotNil(t, resolved.ResolvedAt)
	firstStamp := *resolved.ResolvedAt

	// reopen and resolve again: the original stamp survives
	step(domain.TicketStatusInProgress)
	reResolved := step(domain.TicketStatusResolved)
	require.NotNil(t, reResolved.ResolvedAt)
	assert.Equal(t, firstStamp, *reResolved.ResolvedAt)
}

func TestUpdateVersionConflict(t *testing.T) {
	fx := newFixture(0)
	ticket := mustCreate(t, fx, submitter)

	fx.tickets.failUpdate = repository.ErrVersionConflict
	_, err := fx.service.Update(context.Background(), manager, ticket.ID, TicketUpdateInput{
		Priority: ptr(domain.TicketPriorityHigh),
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Contains(t, domainErr.Message, "modified concurrently")
}

func TestUpdateRecordsHistory(t *testing.T) {
	fx := newFixture(0)
	ticket := mustCreate(t, fx, submitter)
	ctx := context.Background()

	_, err := fx.service.Update(ctx, manager, ticket.ID, TicketUpdateInput{
		Status:     ptr(domain.TicketStatusAssigned),
		AssigneeID: ptr(technician.ID),
		Priority:   ptr(domain.TicketPriorityHigh),
	})
	require.NoError(t, err)

	entries, err := fx.service.ListHistory(ctx, manager, ticket.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	types := map[domain.TicketChangeType]bool{}
	for _, entry := range entries {
		types[entry.ChangeType] = true
		assert.Equal(t, manager.ID, entry.ChangedByID)
	}
	assert.True(t, types[domain.ChangeTypeStatus])
	assert.True(t, types[domain.ChangeTypeAssignee])
	assert.True(t, types[domain.ChangeTypePriority])
}

func TestGetAndListHonorVisibility(t *testing.T) {
	fx := newFixture(0)
	mine := mustCreate(t, fx, submitter)
	other := policy.Actor{ID: 11, Role: domain.RoleUser}
	theirs := mustCreate(t, fx, other)
	ctx := context.Background()

	_, err := fx.service.Get(ctx, submitter, mine.ID)
	assert.NoError(t, err)
	_, err = fx.service.Get(ctx, submitter, theirs.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	listed, err := fx.service.List(ctx, submitter, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)

	all, err := fx.service.List(ctx, admin, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestManagerWithoutDepartmentListAndGetAgree(t *testing.T) {
	fx := newFixture(0)
	ticket := mustCreate(t, fx, manager) // lands in the manager's department
	orphanManager := policy.Actor{ID: 21, Role: domain.RoleManager}
	ctx := context.Background()

	listed, err := fx.service.List(ctx, orphanManager, TicketListFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = fx.service.Get(ctx, orphanManager, ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestDeleteAdminOnlyAndCascades(t *testing.T) {
	fx := newFixture(0)
	ticket := mustCreate(t, fx, submitter)
	ctx := context.Background()

	_, err := fx.service.AddComment(ctx, submitter, ticket.ID, "stále nefunguje")
	require.NoError(t, err)
	_, err = fx.service.AddAttachment(ctx, submitter, ticket.ID, AttachmentInput{
		FileName: "foto.jpg", MimeType: "image/jpeg", Content: []byte{0xff, 0xd8},
	})
	require.NoError(t, err)

	err = fx.service.Delete(ctx, manager, ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	require.NoError(t, fx.service.Delete(ctx, admin, ticket.ID))
	_, err = fx.tickets.GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Empty(t, fx.comments.comments[ticket.ID])
	assert.Empty(t, fx.attachments.attachments[ticket.ID])
	assert.Empty(t, fx.history.entries[ticket.ID])
}

func TestAddAttachmentEnforcesUploadCeiling(t *testing.T) {
	fx := newFixture(16)
	ticket := mustCreate(t, fx, submitter)
	ctx := context.Background()

	oversized := bytes.Repeat([]byte{0x42}, 17)
	_, err := fx.service.AddAttachment(ctx, submitter, ticket.ID, AttachmentInput{
		FileName: "dump.bin", MimeType: "application/octet-stream", Content: oversized,
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Message, "upload limit")

	stored, err := fx.service.AddAttachment(ctx, submitter, ticket.ID, AttachmentInput{
		FileName: "ok.bin", MimeType: "application/octet-stream", Content: oversized[:16],
	})
	require.NoError(t, err)
	assert.Equal(t, int64(16), stored.SizeBytes)
}

func TestStringPreviewKeepsRuneBoundaries(t *testing.T) {
	body := strings.Repeat("Osvětlení bliká. ", 20)

	preview := stringPreview(body, 120)
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, 120, len([]rune(preview)))
	assert.True(t, strings.HasSuffix(preview, "..."))

	// short bodies pass through untouched
	assert.Equal(t, "Zásuvky", stringPreview("  Zásuvky  ", 120))

	// tiny budgets still cut between runes
	tiny := stringPreview("Osvětlení", 3)
	assert.True(t, utf8.ValidString(tiny))
	assert.Equal(t, "Osv", tiny)
}

func TestCommentsRequireVisibility(t *testing.T) {
	fx := newFixture(0)
	ticket := mustCreate(t, fx, submitter)
	stranger := policy.Actor{ID: 12, Role: domain.RoleUser}
	ctx := context.Background()

	_, err := fx.service.AddComment(ctx, stranger, ticket.ID, "co se děje?")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	comment, err := fx.service.AddComment(ctx, submitter, ticket.ID, "přidávám detail")
	require.NoError(t, err)
	assert.Equal(t, submitter.ID, comment.AuthorID)

	thread, err := fx.service.ListComments(ctx, submitter, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, thread, 1)
}
