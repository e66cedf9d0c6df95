package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	dummybroadcast "github.com/trezcool/darasa/services/broadcast/dummy"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

var fixedNow = time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*assignment.Service, assignment.Repository, *dummybroadcast.Service) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	repo := dummydb.NewItemRepository(db)
	bus := dummybroadcast.NewService()
	svc := assignment.NewServiceMock(repo, bus, testutil.Logger{}, testutil.NewConfig(t), func() time.Time { return fixedNow })
	return svc, repo, bus
}

func createItem(t *testing.T, repo assignment.Repository, schoolID, studentID string, tier assignment.Tier, status assignment.Status, createdAt time.Time) assignment.WorkItem {
	t.Helper()
	items, err := repo.CreateItems(context.Background(), []assignment.WorkItem{{
		SchoolID:  schoolID,
		StudentID: studentID,
		Kind:      assignment.KindTask,
		Tier:      tier,
		Title:     "task",
		Status:    status,
		IsCurrent: true,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	return items[0]
}

func TestService_Transition(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		from    assignment.Status
		to      assignment.Status
		wantErr bool
	}{
		{name: "pending to submitted", from: assignment.StatusPending, to: assignment.StatusSubmitted},
		{name: "pending straight to completed", from: assignment.StatusPending, to: assignment.StatusCompleted},
		{name: "submitted to reviewed", from: assignment.StatusSubmitted, to: assignment.StatusReviewed},
		{name: "submitted to completed", from: assignment.StatusSubmitted, to: assignment.StatusCompleted},
		{name: "reviewed to completed", from: assignment.StatusReviewed, to: assignment.StatusCompleted},
		{name: "reviewed reopened to submitted", from: assignment.StatusReviewed, to: assignment.StatusSubmitted},

		{name: "pending cannot be reviewed", from: assignment.StatusPending, to: assignment.StatusReviewed, wantErr: true},
		{name: "completed is terminal for submitted", from: assignment.StatusCompleted, to: assignment.StatusSubmitted, wantErr: true},
		{name: "completed is terminal for reviewed", from: assignment.StatusCompleted, to: assignment.StatusReviewed, wantErr: true},
		{name: "completed is terminal for pending", from: assignment.StatusCompleted, to: assignment.StatusPending, wantErr: true},
		{name: "no self transition", from: assignment.StatusSubmitted, to: assignment.StatusSubmitted, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := setup(t)
			item := createItem(t, repo, "sch1", "std1", assignment.TierGrowth, tt.from, fixedNow.Add(-time.Hour))

			got, err := svc.Transition(ctx, item.ID, tt.to, "teacher1", "sch1")
			if tt.wantErr {
				require.Error(t, err)
				assert.IsType(t, &core.ValidationError{}, err)

				// store untouched
				stored, gerr := repo.GetItemByID(ctx, item.ID)
				require.NoError(t, gerr)
				assert.Equal(t, tt.from, stored.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			assert.Equal(t, fixedNow, got.UpdatedAt)
		})
	}
}

func TestService_Transition_stampsSubmittedAt(t *testing.T) {
	ctx := context.Background()
	svc, repo, bus := setup(t)

	item := createItem(t, repo, "sch1", "std1", assignment.TierGrowth, assignment.StatusPending, fixedNow.Add(-time.Hour))
	got, err := svc.Transition(ctx, item.ID, assignment.StatusSubmitted, "teacher1", "sch1")
	require.NoError(t, err)
	assert.Equal(t, fixedNow, got.SubmittedAt)

	// pending straight to completed stamps too
	item2 := createItem(t, repo, "sch1", "std1", assignment.TierGrowth, assignment.StatusPending, fixedNow.Add(-time.Hour))
	got2, err := svc.Transition(ctx, item2.ID, assignment.StatusCompleted, "teacher1", "sch1")
	require.NoError(t, err)
	assert.Equal(t, fixedNow, got2.SubmittedAt)

	// each successful transition notifies the student's channel
	events := bus.Events()
	require.Len(t, events, 2)
	assert.Equal(t, core.StudentChannel("std1"), events[0].Channel)
	assert.Equal(t, core.EventDataUpdate, events[0].Type)
}

func TestService_Transition_scope(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup(t)

	item := createItem(t, repo, "schB", "std1", assignment.TierGrowth, assignment.StatusPending, fixedNow.Add(-time.Hour))

	// a caller scoped to another school sees neither the item nor its existence
	_, err := svc.Transition(ctx, item.ID, assignment.StatusCompleted, "teacher1", "schA")
	assert.Equal(t, assignment.ErrNotFoundOrForbidden, err)

	_, err = svc.Transition(ctx, "no-such-id", assignment.StatusCompleted, "teacher1", "schA")
	assert.Equal(t, assignment.ErrNotFoundOrForbidden, err)

	_, err = svc.MarkAttempt(ctx, item.ID, "schA")
	assert.Equal(t, assignment.ErrNotFoundOrForbidden, err)
}

func TestService_Transition_unknownStatus(t *testing.T) {
	svc, repo, _ := setup(t)
	item := createItem(t, repo, "sch1", "std1", assignment.TierGrowth, assignment.StatusPending, fixedNow.Add(-time.Hour))

	_, err := svc.Transition(context.Background(), item.ID, assignment.Status("YOLO"), "teacher1", "sch1")
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestService_BatchTransition(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup(t)

	ok1 := createItem(t, repo, "sch1", "std1", assignment.TierGrowth, assignment.StatusPending, fixedNow.Add(-time.Hour))
	ok2 := createItem(t, repo, "sch1", "std2", assignment.TierGrowth, assignment.StatusPending, fixedNow.Add(-time.Hour))
	terminal := createItem(t, repo, "sch1", "std3", assignment.TierGrowth, assignment.StatusCompleted, fixedNow.Add(-time.Hour))

	res := svc.BatchTransition(ctx, []string{ok1.ID, terminal.ID, ok2.ID, "missing"}, assignment.StatusCompleted, "teacher1", "sch1")

	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 2, res.FailureCount)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], terminal.ID)
	assert.Contains(t, res.Errors[1], "missing")

	// the failures did not block the successes
	stored, err := repo.GetItemByID(ctx, ok2.ID)
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusCompleted, stored.Status)
}

func TestService_MarkAttempt(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup(t)

	item := createItem(t, repo, "sch1", "std1", assignment.TierMethodology, assignment.StatusPending, fixedNow.Add(-time.Hour))

	got, err := svc.MarkAttempt(ctx, item.ID, "sch1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttemptCount)

	got, err = svc.MarkAttempt(ctx, item.ID, "sch1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.AttemptCount)
	assert.Equal(t, assignment.StatusPending, got.Status) // attempts do not move the status
}

func TestService_CreateAdHoc(t *testing.T) {
	ctx := context.Background()
	svc, _, bus := setup(t)

	got, err := svc.CreateAdHoc(ctx, "sch1", "std1", "teacher1", assignment.TaskDef{
		Title:    "Bonus exercise",
		Category: "growth",
		Exp:      15,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Empty(t, got.PlanID)
	assert.Equal(t, assignment.KindTask, got.Kind)
	assert.Equal(t, assignment.TierGrowth, got.Tier)
	assert.Equal(t, assignment.StatusPending, got.Status)
	assert.True(t, got.IsCurrent)
	assert.Equal(t, 15, got.ExpAwarded)
	assert.Equal(t, "2026-08-29", got.Content.TaskDate)
	assert.Equal(t, "teacher1", got.Content.PublisherID)
	require.NotNil(t, got.Content.Task)

	events := bus.Events()
	require.Len(t, events, 1)
	assert.Equal(t, core.StudentChannel("std1"), events[0].Channel)
}

func TestService_CreateAdHoc_personalized(t *testing.T) {
	svc, _, _ := setup(t)

	got, err := svc.CreateAdHoc(context.Background(), "sch1", "std1", "teacher1", assignment.TaskDef{
		Title:    "One on one review",
		Category: "personalized",
	})
	require.NoError(t, err)
	assert.Equal(t, assignment.TierPersonalized, got.Tier)
	require.NotNil(t, got.Content.Personalized)
	assert.Equal(t, "std1", got.Content.Personalized.TargetStudentID)
}

func TestService_CreateAdHoc_requiresTitle(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.CreateAdHoc(context.Background(), "sch1", "std1", "teacher1", assignment.TaskDef{Title: "   "})
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestService_DailyBoard(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup(t)

	today := createItem(t, repo, "sch1", "std1", assignment.TierGrowth, assignment.StatusPending, fixedNow.Add(-2*time.Hour))
	// last week's item and another student's item stay off the board
	createItem(t, repo, "sch1", "std1", assignment.TierGrowth, assignment.StatusPending, fixedNow.Add(-7*24*time.Hour))
	createItem(t, repo, "sch1", "std2", assignment.TierGrowth, assignment.StatusPending, fixedNow.Add(-2*time.Hour))

	items, err := svc.DailyBoard(ctx, "sch1", "std1", fixedNow)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, today.ID, items[0].ID)

	// an expired target day yields an empty board, not an error
	items, err = svc.DailyBoard(ctx, "sch1", "std1", fixedNow.Add(-3*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_History(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup(t)

	oldest := createItem(t, repo, "sch1", "std1", assignment.TierGrowth, assignment.StatusCompleted, fixedNow.Add(-48*time.Hour))
	middle := createItem(t, repo, "sch1", "std1", assignment.TierGrowth, assignment.StatusCompleted, fixedNow.Add(-24*time.Hour))
	newest := createItem(t, repo, "sch1", "std1", assignment.TierGrowth, assignment.StatusPending, fixedNow.Add(-time.Hour))

	items, err := svc.History(ctx, "sch1", "std1", 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, newest.ID, items[0].ID)
	assert.Equal(t, middle.ID, items[1].ID)
	assert.Equal(t, oldest.ID, items[2].ID)

	items, err = svc.History(ctx, "sch1", "std1", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newest.ID, items[0].ID)
}
