package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
)

var (
	// ErrNotFoundOrForbidden covers both a missing item and an item scoped to
	// another school; the two are deliberately indistinguishable so existence
	// does not leak across tenants.
	ErrNotFoundOrForbidden = errors.New("work item not found")
)

// statusEdges is the explicit finite-state machine for work item statuses.
// Completed is terminal; Reviewed->Submitted is the reopen edge.
var statusEdges = map[Status][]Status{
	StatusPending:   {StatusSubmitted, StatusCompleted},
	StatusSubmitted: {StatusReviewed, StatusCompleted},
	StatusReviewed:  {StatusCompleted, StatusSubmitted},
	StatusCompleted: {},
}

func allowedTransition(from, to Status) bool {
	for _, next := range statusEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

type (
	// Repository is the persistence contract for work item records. It must
	// not assume a specific query language: only filtered archive-update,
	// bulk insert, windowed read and point read/update.
	Repository interface {
		// CreateItems bulk-inserts items in one store call.
		CreateItems(ctx context.Context, items []WorkItem, exec ...core.DBExecutor) ([]WorkItem, error)
		// ArchiveCurrentItems flips IsCurrent to false on every current item
		// matched by the filter and returns the number of rows archived.
		// Nothing is ever physically deleted.
		ArchiveCurrentItems(ctx context.Context, filter ArchiveFilter, exec ...core.DBExecutor) (int, error)
		// FilterItems applies AND operation on available QueryFilter fields.
		FilterItems(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]WorkItem, error)
		GetItemByID(ctx context.Context, id string, exec ...core.DBExecutor) (WorkItem, error)
		UpdateItem(ctx context.Context, item WorkItem, exec ...core.DBExecutor) (WorkItem, error)
	}

	Service struct {
		repo        Repository
		broadcaster core.Broadcaster
		logger      core.Logger
		conf        *core.Config

		now func() time.Time // mockable
	}
)

func NewService(repo Repository, broadcaster core.Broadcaster, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger,
		conf:        conf,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Transition applies one status change under school-scope enforcement.
// Entering Submitted or Completed stamps SubmittedAt; illegal FSM edges are
// rejected with a core.ValidationError.
func (svc *Service) Transition(ctx context.Context, itemID string, newStatus Status, actorID, scopeSchoolID string) (WorkItem, error) {
	if !ValidStatus(newStatus) {
		return WorkItem{}, core.NewValidationError(
			fmt.Errorf("unknown status %q", newStatus),
			core.FieldError{Field: "status", Error: "unknown status"},
		)
	}

	item, err := svc.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return WorkItem{}, err
	}
	if item.SchoolID != scopeSchoolID {
		return WorkItem{}, ErrNotFoundOrForbidden
	}

	if !allowedTransition(item.Status, newStatus) {
		return WorkItem{}, core.NewValidationError(
			fmt.Errorf("cannot transition from %s to %s", item.Status, newStatus),
			core.FieldError{Field: "status", Error: fmt.Sprintf("cannot transition from %s to %s", item.Status, newStatus)},
		)
	}

	now := svc.now()
	item.Status = newStatus
	item.UpdatedAt = now
	if newStatus == StatusSubmitted || newStatus == StatusCompleted {
		item.SubmittedAt = now
	}

	item, err = svc.repo.UpdateItem(ctx, item)
	if err != nil {
		return WorkItem{}, err
	}

	svc.broadcastStudentUpdate(ctx, item.StudentID)
	return item, nil
}

// BatchTransition applies Transition to each id independently; one failure
// never aborts the rest.
func (svc *Service) BatchTransition(ctx context.Context, itemIDs []string, newStatus Status, actorID, scopeSchoolID string) BatchResult {
	var res BatchResult
	for _, id := range itemIDs {
		if _, err := svc.Transition(ctx, id, newStatus, actorID, scopeSchoolID); err != nil {
			res.FailureCount++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", id, err.Error()))
			continue
		}
		res.SuccessCount++
	}
	return res
}

// MarkAttempt increments the attempt counter on an item.
func (svc *Service) MarkAttempt(ctx context.Context, itemID, scopeSchoolID string) (WorkItem, error) {
	item, err := svc.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return WorkItem{}, err
	}
	if item.SchoolID != scopeSchoolID {
		return WorkItem{}, ErrNotFoundOrForbidden
	}

	item.AttemptCount++
	item.UpdatedAt = svc.now()
	item, err = svc.repo.UpdateItem(ctx, item)
	if err != nil {
		return WorkItem{}, err
	}

	svc.broadcastStudentUpdate(ctx, item.StudentID)
	return item, nil
}

// CreateAdHoc creates one standalone current item outside any plan, for
// manual awards and drawer additions. The definition runs through the tier
// classifier like published tasks do.
func (svc *Service) CreateAdHoc(ctx context.Context, schoolID, studentID, actorID string, def TaskDef) (WorkItem, error) {
	def.Title = core.CleanString(def.Title)
	if def.Title == "" {
		return WorkItem{}, core.NewValidationError(
			errors.New("task title is required"),
			core.FieldError{Field: "title", Error: "this field is required"},
		)
	}

	tier, fellBack := ClassifyTask(def)
	if fellBack {
		svc.logger.Warn(fmt.Sprintf("tier classifier fallback used for ad-hoc task %q (category %q)", def.Title, def.Category))
	}

	kind := def.Kind
	if kind == "" {
		kind = KindTask
	}

	now := svc.now()
	content := Content{
		TaskDate:    DayString(now, svc.conf.Server.Timezone),
		PublisherID: actorID,
	}
	switch tier {
	case TierPersonalized:
		content.Personalized = &PersonalizedContent{
			TaskContent:     TaskContent{Category: def.Category, Subcategory: def.Subcategory, Note: def.Note},
			TargetStudentID: studentID,
		}
	default:
		content.Task = &TaskContent{Category: def.Category, Subcategory: def.Subcategory, Note: def.Note}
	}

	items, err := svc.repo.CreateItems(ctx, []WorkItem{{
		ID:         uuid.New().String(),
		SchoolID:   schoolID,
		StudentID:  studentID,
		Kind:       kind,
		Tier:       tier,
		Title:      def.Title,
		Content:    content,
		Status:     StatusPending,
		IsCurrent:  true,
		ExpAwarded: def.Exp,
		CreatedAt:  now,
		UpdatedAt:  now,
	}})
	if err != nil {
		return WorkItem{}, err
	}

	svc.broadcastStudentUpdate(ctx, studentID)
	return items[0], nil
}

// DailyBoard returns the student's current items visible for targetDate,
// bounded by the visibility window. An expired or too-old date yields an
// empty board, not an error.
func (svc *Service) DailyBoard(ctx context.Context, schoolID, studentID string, targetDate time.Time) ([]WorkItem, error) {
	window, ok := Window(targetDate, svc.now(), svc.conf.Server.Timezone)
	if !ok {
		return []WorkItem{}, nil
	}
	return svc.repo.FilterItems(ctx, QueryFilter{
		SchoolID:    schoolID,
		StudentID:   studentID,
		OnlyCurrent: true,
		CreatedFrom: window.Start,
		CreatedTo:   window.End,
		Ordering:    []core.DBOrdering{{Field: "created_at", Ascending: true}},
	})
}

// History returns the student's full item ledger, current and archived alike.
// Newest first unless the caller supplies an ordering.
func (svc *Service) History(ctx context.Context, schoolID, studentID string, limit int, ordering ...core.DBOrdering) ([]WorkItem, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
	}
	return svc.repo.FilterItems(ctx, QueryFilter{
		SchoolID:  schoolID,
		StudentID: studentID,
		Limit:     limit,
		Ordering:  ordering,
	})
}

func (svc *Service) broadcastStudentUpdate(ctx context.Context, studentID string) {
	if svc.broadcaster == nil {
		return
	}
	payload := map[string]interface{}{
		"student_id": studentID,
		"timestamp":  svc.now().Format(time.RFC3339),
	}
	if err := svc.broadcaster.Publish(ctx, core.StudentChannel(studentID), core.EventDataUpdate, payload); err != nil {
		svc.logger.Warn(fmt.Sprintf("broadcasting student update: %v", err))
	}
}
