package sqlxrepos

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
)

const itemCols = "id, school_id, student_id, plan_id, kind, tier, title, content, subject, status, is_current, exp_awarded, attempt_count, submitted_at, created_at, updated_at"

type itemRow struct {
	ID           string         `db:"id"`
	SchoolID     string         `db:"school_id"`
	StudentID    string         `db:"student_id"`
	PlanID       null.String    `db:"plan_id"`
	Kind         string         `db:"kind"`
	Tier         string         `db:"tier"`
	Title        string         `db:"title"`
	Content      types.JSONText `db:"content"`
	Subject      string         `db:"subject"`
	Status       string         `db:"status"`
	IsCurrent    bool           `db:"is_current"`
	ExpAwarded   int            `db:"exp_awarded"`
	AttemptCount int            `db:"attempt_count"`
	SubmittedAt  null.Time      `db:"submitted_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r itemRow) domain() (assignment.WorkItem, error) {
	var content assignment.Content
	if len(r.Content) > 0 {
		if err := json.Unmarshal(r.Content, &content); err != nil {
			return assignment.WorkItem{}, errors.Wrapf(err, "decoding item %s content", r.ID)
		}
	}
	return assignment.WorkItem{
		ID:           r.ID,
		SchoolID:     r.SchoolID,
		StudentID:    r.StudentID,
		PlanID:       r.PlanID.String,
		Kind:         assignment.Kind(r.Kind),
		Tier:         assignment.Tier(r.Tier),
		Title:        r.Title,
		Content:      content,
		Subject:      r.Subject,
		Status:       assignment.Status(r.Status),
		IsCurrent:    r.IsCurrent,
		ExpAwarded:   r.ExpAwarded,
		AttemptCount: r.AttemptCount,
		SubmittedAt:  r.SubmittedAt.Time,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

type assignmentRepository struct {
	exec core.DBExecutor
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(exec core.DBExecutor) *assignmentRepository {
	return &assignmentRepository{exec: exec}
}

func (repo assignmentRepository) CreateItems(ctx context.Context, items []assignment.WorkItem, exec ...core.DBExecutor) ([]assignment.WorkItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString("INSERT INTO work_item (" + itemCols + ") VALUES ")
	for i := range items {
		item := &items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		content, err := json.Marshal(item.Content)
		if err != nil {
			return nil, errors.Wrap(err, "encoding item content")
		}

		if i > 0 {
			sb.WriteString(", ")
		}
		base := len(args)
		sb.WriteString("(")
		for j := 1; j <= 16; j++ {
			if j > 1 {
				sb.WriteString(", ")
			}
			sb.WriteString("$" + strconv.Itoa(base+j))
		}
		sb.WriteString(")")
		args = append(args,
			item.ID, item.SchoolID, item.StudentID, null.NewString(item.PlanID, item.PlanID != ""),
			string(item.Kind), string(item.Tier), item.Title, types.JSONText(content), item.Subject,
			string(item.Status), item.IsCurrent, item.ExpAwarded, item.AttemptCount,
			null.NewTime(item.SubmittedAt, !item.SubmittedAt.IsZero()), item.CreatedAt, item.UpdatedAt,
		)
	}

	if _, err := getExec(repo.exec, exec).ExecContext(ctx, sb.String(), args...); err != nil {
		return nil, errors.Wrap(err, "inserting work items")
	}
	return items, nil
}

func (repo assignmentRepository) ArchiveCurrentItems(ctx context.Context, filter assignment.ArchiveFilter, exec ...core.DBExecutor) (int, error) {
	if len(filter.StudentIDs) == 0 || len(filter.Tiers) == 0 {
		return 0, nil
	}

	conds := []string{"is_current", "student_id IN (?)", "tier IN (?)"}
	args := []interface{}{filter.StudentIDs, tierStrings(filter.Tiers)}
	if filter.SchoolID != "" {
		conds = append(conds, "school_id = ?")
		args = append(args, filter.SchoolID)
	}
	if filter.Subject != "" {
		conds = append(conds, "subject = ?")
		args = append(args, filter.Subject)
	}

	q, args, err := rebindIn("UPDATE work_item SET is_current = FALSE, updated_at = now()"+whereClause(conds), args...)
	if err != nil {
		return 0, err
	}
	res, err := getExec(repo.exec, exec).ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "archiving work items")
	}
	archived, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "archiving work items")
	}
	return int(archived), nil
}

func (repo assignmentRepository) FilterItems(ctx context.Context, filter assignment.QueryFilter, exec ...core.DBExecutor) ([]assignment.WorkItem, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.SchoolID != "" {
		conds = append(conds, "school_id = ?")
		args = append(args, filter.SchoolID)
	}
	if filter.StudentID != "" {
		conds = append(conds, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.PlanID != "" {
		conds = append(conds, "plan_id = ?")
		args = append(args, filter.PlanID)
	}
	if len(filter.Tiers) > 0 {
		conds = append(conds, "tier IN (?)")
		args = append(args, tierStrings(filter.Tiers))
	}
	if filter.OnlyCurrent {
		conds = append(conds, "is_current")
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, filter.CreatedTo)
	}

	q := "SELECT " + itemCols + " FROM work_item" + whereClause(conds) +
		orderBy(filter.Ordering, "created_at DESC") + limitOffset(filter.Limit, 0)
	q, args, err := rebindIn(q, args...)
	if err != nil {
		return nil, err
	}
	var rows []itemRow
	if err = queryAll(ctx, getExec(repo.exec, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering work items")
	}

	items := make([]assignment.WorkItem, 0, len(rows))
	for _, r := range rows {
		item, err := r.domain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (repo assignmentRepository) GetItemByID(ctx context.Context, id string, exec ...core.DBExecutor) (assignment.WorkItem, error) {
	var rows []itemRow
	q := "SELECT " + itemCols + " FROM work_item WHERE id = $1"
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, id); err != nil {
		return assignment.WorkItem{}, errors.Wrap(err, "getting work item")
	}
	if len(rows) == 0 {
		return assignment.WorkItem{}, assignment.ErrNotFoundOrForbidden
	}
	return rows[0].domain()
}

func (repo assignmentRepository) UpdateItem(ctx context.Context, item assignment.WorkItem, exec ...core.DBExecutor) (assignment.WorkItem, error) {
	content, err := json.Marshal(item.Content)
	if err != nil {
		return assignment.WorkItem{}, errors.Wrap(err, "encoding item content")
	}

	q := `UPDATE work_item
	      SET status = $1, is_current = $2, exp_awarded = $3, attempt_count = $4,
	          content = $5, submitted_at = $6, updated_at = $7
	      WHERE id = $8`
	res, err := getExec(repo.exec, exec).ExecContext(
		ctx, q, string(item.Status), item.IsCurrent, item.ExpAwarded, item.AttemptCount,
		types.JSONText(content), null.NewTime(item.SubmittedAt, !item.SubmittedAt.IsZero()),
		item.UpdatedAt, item.ID,
	)
	if err != nil {
		return assignment.WorkItem{}, errors.Wrap(err, "updating work item")
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return assignment.WorkItem{}, errors.Wrap(err, "updating work item")
	}
	if updated == 0 {
		return assignment.WorkItem{}, assignment.ErrNotFoundOrForbidden
	}
	return item, nil
}

func tierStrings(tiers []assignment.Tier) []string {
	strs := make([]string, 0, len(tiers))
	for _, t := range tiers {
		strs = append(strs, string(t))
	}
	return strs
}
