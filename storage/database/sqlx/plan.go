package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/plan"
)

const planCols = "id, school_id, teacher_id, title, target_date, content, is_active, created_at, updated_at"

type planRow struct {
	ID         string         `db:"id"`
	SchoolID   string         `db:"school_id"`
	TeacherID  string         `db:"teacher_id"`
	Title      string         `db:"title"`
	TargetDate time.Time      `db:"target_date"`
	Content    types.JSONText `db:"content"`
	IsActive   bool           `db:"is_active"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r planRow) domain() (plan.Plan, error) {
	var content plan.PlanContent
	if len(r.Content) > 0 {
		if err := json.Unmarshal(r.Content, &content); err != nil {
			return plan.Plan{}, errors.Wrapf(err, "decoding plan %s content", r.ID)
		}
	}
	return plan.Plan{
		ID:         r.ID,
		SchoolID:   r.SchoolID,
		TeacherID:  r.TeacherID,
		Title:      r.Title,
		Content:    content,
		TargetDate: r.TargetDate,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

type planRepository struct {
	exec core.DBExecutor
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(exec core.DBExecutor) *planRepository {
	return &planRepository{exec: exec}
}

func (repo planRepository) CreatePlan(ctx context.Context, p plan.Plan, exec ...core.DBExecutor) (plan.Plan, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	content, err := json.Marshal(p.Content)
	if err != nil {
		return plan.Plan{}, errors.Wrap(err, "encoding plan content")
	}

	q := `INSERT INTO plan (` + planCols + `)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = getExec(repo.exec, exec).ExecContext(
		ctx, q, p.ID, p.SchoolID, p.TeacherID, p.Title, p.TargetDate,
		types.JSONText(content), p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return plan.Plan{}, errors.Wrap(err, "inserting plan")
	}
	return p, nil
}

func (repo planRepository) GetPlanByID(ctx context.Context, id string, exec ...core.DBExecutor) (plan.Plan, error) {
	var rows []planRow
	q := "SELECT " + planCols + " FROM plan WHERE id = $1"
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, id); err != nil {
		return plan.Plan{}, errors.Wrap(err, "getting plan")
	}
	if len(rows) == 0 {
		return plan.Plan{}, plan.ErrNotFound
	}
	return rows[0].domain()
}

func (repo planRepository) FilterPlans(ctx context.Context, filter plan.QueryFilter, exec ...core.DBExecutor) ([]plan.Plan, int, error) {
	conds := []string{"is_active"}
	var args []interface{}
	if filter.SchoolID != "" {
		conds = append(conds, "school_id = ?")
		args = append(args, filter.SchoolID)
	}
	if !filter.DateFrom.IsZero() {
		conds = append(conds, "target_date >= ?")
		args = append(args, filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		conds = append(conds, "target_date <= ?")
		args = append(args, filter.DateTo)
	}

	countQ, countArgs, err := rebindIn("SELECT COUNT(*) FROM plan"+whereClause(conds), args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	e := getExec(repo.exec, exec)
	if err = e.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "counting plans")
	}

	offset := (filter.Page - 1) * filter.Limit
	q := "SELECT " + planCols + " FROM plan" + whereClause(conds) +
		" ORDER BY target_date DESC, created_at DESC" + limitOffset(filter.Limit, offset)
	q, args, err = rebindIn(q, args...)
	if err != nil {
		return nil, 0, err
	}
	var rows []planRow
	if err = queryAll(ctx, e, &rows, q, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering plans")
	}

	plans := make([]plan.Plan, 0, len(rows))
	for _, r := range rows {
		p, err := r.domain()
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, p)
	}
	return plans, total, nil
}

func (repo planRepository) UpdatePlan(ctx context.Context, p plan.Plan, exec ...core.DBExecutor) (plan.Plan, error) {
	content, err := json.Marshal(p.Content)
	if err != nil {
		return plan.Plan{}, errors.Wrap(err, "encoding plan content")
	}

	q := `UPDATE plan SET title = $1, content = $2, is_active = $3, updated_at = $4 WHERE id = $5`
	res, err := getExec(repo.exec, exec).ExecContext(ctx, q, p.Title, types.JSONText(content), p.IsActive, p.UpdatedAt, p.ID)
	if err != nil {
		return plan.Plan{}, errors.Wrap(err, "updating plan")
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return plan.Plan{}, errors.Wrap(err, "updating plan")
	}
	if updated == 0 {
		return plan.Plan{}, plan.ErrNotFound
	}
	return p, nil
}
