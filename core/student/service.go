package student

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

// EmptyRosterError reports a roster resolution that yielded no students,
// distinguishing a teacher who owns no active students at all from one whose
// students live under a different school id than the one supplied (a
// configuration/data-entry mismatch). OwnedSchoolIDs carries the mismatched
// ids so the entry can be corrected without guessing.
type EmptyRosterError struct {
	TeacherID      string
	SchoolID       string
	OwnedSchoolIDs []string
}

func (err *EmptyRosterError) Error() string {
	if len(err.OwnedSchoolIDs) > 0 {
		return fmt.Sprintf(
			"teacher %s owns no active students in school %s; owned students found in school(s): %s",
			err.TeacherID, err.SchoolID, strings.Join(err.OwnedSchoolIDs, ", "),
		)
	}
	return fmt.Sprintf("teacher %s owns no active students", err.TeacherID)
}

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		FilterStudents(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, std Student) (Student, error) {
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// ResolveRoster resolves the set of active students owned by teacherID within
// schoolID. An empty result returns *EmptyRosterError with diagnostic detail.
func (svc *Service) ResolveRoster(ctx context.Context, schoolID, teacherID string) (Roster, error) {
	active := true
	students, err := svc.repo.FilterStudents(ctx, QueryFilter{
		SchoolID:  schoolID,
		TeacherID: teacherID,
		IsActive:  &active,
	})
	if err != nil {
		return Roster{}, err
	}
	if len(students) > 0 {
		return Roster{SchoolID: schoolID, TeacherID: teacherID, Students: students}, nil
	}

	// empty: find out whether the teacher owns students under other schools
	owned, err := svc.repo.FilterStudents(ctx, QueryFilter{TeacherID: teacherID, IsActive: &active})
	if err != nil {
		return Roster{}, err
	}
	rosterErr := &EmptyRosterError{TeacherID: teacherID, SchoolID: schoolID}
	seen := make(map[string]struct{})
	for _, s := range owned {
		if s.SchoolID == schoolID {
			continue
		}
		if _, ok := seen[s.SchoolID]; !ok {
			seen[s.SchoolID] = struct{}{}
			rosterErr.OwnedSchoolIDs = append(rosterErr.OwnedSchoolIDs, s.SchoolID)
		}
	}
	return Roster{}, rosterErr
}
