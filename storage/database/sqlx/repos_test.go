package sqlxrepos

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/plan"
)

// execRecorder captures the bound args of write queries so stamping behavior
// can be asserted without a live database.
type execRecorder struct {
	query string
	args  []interface{}
	rows  int64
}

var _ core.DBExecutor = (*execRecorder)(nil)

func (r *execRecorder) Exec(query string, args ...interface{}) (sql.Result, error) {
	return r.ExecContext(context.Background(), query, args...)
}

func (r *execRecorder) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	r.query, r.args = query, args
	return rowsAffected(r.rows), nil
}

func (r *execRecorder) Query(string, ...interface{}) (*sql.Rows, error) { return nil, sql.ErrNoRows }
func (r *execRecorder) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, sql.ErrNoRows
}
func (r *execRecorder) QueryRow(string, ...interface{}) *sql.Row { return nil }
func (r *execRecorder) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

type rowsAffected int64

func (n rowsAffected) LastInsertId() (int64, error) { return 0, nil }
func (n rowsAffected) RowsAffected() (int64, error) { return int64(n), nil }

var stamp = time.Date(2026, time.August, 1, 9, 30, 0, 0, time.UTC)

func Test_assignmentRepository_CreateItems_keepsCallerStamps(t *testing.T) {
	rec := &execRecorder{rows: 1}
	repo := NewAssignmentRepository(rec)

	items, err := repo.CreateItems(context.Background(), []assignment.WorkItem{{
		ID:        "itm1",
		SchoolID:  "sch1",
		StudentID: "std1",
		Kind:      assignment.KindTask,
		Tier:      assignment.TierGrowth,
		Title:     "Read chapter 4",
		Status:    assignment.StatusPending,
		IsCurrent: true,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "itm1", items[0].ID)
	assert.Equal(t, stamp, items[0].CreatedAt)
	assert.Equal(t, stamp, items[0].UpdatedAt)
	// created_at and updated_at are the last two bound values per row
	require.Len(t, rec.args, 16)
	assert.Equal(t, stamp, rec.args[14])
	assert.Equal(t, stamp, rec.args[15])
}

func Test_assignmentRepository_UpdateItem_keepsCallerStamps(t *testing.T) {
	rec := &execRecorder{rows: 1}
	repo := NewAssignmentRepository(rec)

	item, err := repo.UpdateItem(context.Background(), assignment.WorkItem{
		ID:        "itm1",
		Status:    assignment.StatusSubmitted,
		IsCurrent: true,
		UpdatedAt: stamp,
	})
	require.NoError(t, err)

	assert.Equal(t, stamp, item.UpdatedAt)
	require.Len(t, rec.args, 8)
	assert.Equal(t, stamp, rec.args[6]) // updated_at
}

func Test_planRepository_CreatePlan_keepsCallerStamps(t *testing.T) {
	rec := &execRecorder{rows: 1}
	repo := NewPlanRepository(rec)

	p, err := repo.CreatePlan(context.Background(), plan.Plan{
		ID:        "pln1",
		SchoolID:  "sch1",
		TeacherID: "tch1",
		Title:     "Week 35 plan",
		IsActive:  true,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	})
	require.NoError(t, err)

	assert.Equal(t, "pln1", p.ID)
	assert.Equal(t, stamp, p.CreatedAt)
	assert.Equal(t, stamp, p.UpdatedAt)
	require.Len(t, rec.args, 9)
	assert.Equal(t, stamp, rec.args[7]) // created_at
	assert.Equal(t, stamp, rec.args[8]) // updated_at
}

func Test_planRepository_CreatePlan_fillsMissingID(t *testing.T) {
	rec := &execRecorder{rows: 1}
	repo := NewPlanRepository(rec)

	p, err := repo.CreatePlan(context.Background(), plan.Plan{
		SchoolID:  "sch1",
		TeacherID: "tch1",
		Title:     "Week 36 plan",
		CreatedAt: stamp,
		UpdatedAt: stamp,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
}
