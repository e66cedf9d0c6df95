package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

const studentCols = "id, school_id, teacher_id, name, class_label, exp, points, level, is_active, created_at, updated_at"

type studentRow struct {
	ID         string    `db:"id"`
	SchoolID   string    `db:"school_id"`
	TeacherID  string    `db:"teacher_id"`
	Name       string    `db:"name"`
	ClassLabel string    `db:"class_label"`
	Exp        int       `db:"exp"`
	Points     int       `db:"points"`
	Level      int       `db:"level"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r studentRow) domain() student.Student {
	return student.Student{
		ID:         r.ID,
		SchoolID:   r.SchoolID,
		TeacherID:  r.TeacherID,
		Name:       r.Name,
		ClassLabel: r.ClassLabel,
		Exp:        r.Exp,
		Points:     r.Points,
		Level:      r.Level,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	std.ID = uuid.New().String()
	now := time.Now().UTC()
	std.CreatedAt, std.UpdatedAt = now, now

	q := `INSERT INTO student (` + studentCols + `)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := getExec(repo.exec, exec).ExecContext(
		ctx, q, std.ID, std.SchoolID, std.TeacherID, std.Name, std.ClassLabel,
		std.Exp, std.Points, std.Level, std.IsActive, std.CreatedAt, std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	var rows []studentRow
	q := "SELECT " + studentCols + " FROM student WHERE id = $1"
	if err := queryAll(ctx, getExec(repo.exec, exec), &rows, q, id); err != nil {
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	if len(rows) == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return rows[0].domain(), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter, exec ...core.DBExecutor) ([]student.Student, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.SchoolID != "" {
		conds = append(conds, "school_id = ?")
		args = append(args, filter.SchoolID)
	}
	if filter.TeacherID != "" {
		conds = append(conds, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = ?")
		args = append(args, *filter.IsActive)
	}

	q, args, err := rebindIn("SELECT "+studentCols+" FROM student"+whereClause(conds)+" ORDER BY name ASC", args...)
	if err != nil {
		return nil, err
	}
	var rows []studentRow
	if err = queryAll(ctx, getExec(repo.exec, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.domain())
	}
	return students, nil
}
