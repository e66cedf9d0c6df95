package student_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/student"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

func setup(t *testing.T) (*student.Service, student.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewStudentRepository(db)
	return student.NewService(repo), repo
}

func TestService_ResolveRoster(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)

	s1 := testutil.CreateStudent(t, repo, "sch1", "teach1", "Amina", "3A", true)
	s2 := testutil.CreateStudent(t, repo, "sch1", "teach1", "Badu", "3B", true)
	testutil.CreateStudent(t, repo, "sch1", "teach1", "Chipo", "3A", false)   // inactive
	testutil.CreateStudent(t, repo, "sch1", "teach2", "Dalila", "3A", true)   // other teacher
	testutil.CreateStudent(t, repo, "sch2", "teach1", "Eshe", "4A", true)     // other school

	roster, err := svc.ResolveRoster(ctx, "sch1", "teach1")
	require.NoError(t, err)
	assert.Equal(t, "sch1", roster.SchoolID)
	assert.Equal(t, "teach1", roster.TeacherID)
	require.Len(t, roster.Students, 2)
	assert.ElementsMatch(t, []string{s1.ID, s2.ID}, roster.IDs())
	assert.True(t, roster.Contains(s1.ID))
	assert.False(t, roster.Contains("nope"))
	assert.ElementsMatch(t, []string{"3A", "3B"}, roster.ClassLabels())
}

func TestService_ResolveRoster_empty(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)

	// the teacher's students all live under a different school id
	testutil.CreateStudent(t, repo, "sch2", "teach1", "Amina", "3A", true)
	testutil.CreateStudent(t, repo, "sch3", "teach1", "Badu", "3B", true)
	testutil.CreateStudent(t, repo, "sch2", "teach1", "Chipo", "3A", true)

	_, err := svc.ResolveRoster(ctx, "sch1", "teach1")
	require.Error(t, err)

	rosterErr, ok := err.(*student.EmptyRosterError)
	require.True(t, ok, "want *EmptyRosterError, got %T", err)
	assert.Equal(t, "teach1", rosterErr.TeacherID)
	assert.Equal(t, "sch1", rosterErr.SchoolID)
	assert.ElementsMatch(t, []string{"sch2", "sch3"}, rosterErr.OwnedSchoolIDs)
	assert.Contains(t, rosterErr.Error(), "owned students found in school(s)")
}

func TestService_ResolveRoster_teacherOwnsNothing(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.ResolveRoster(context.Background(), "sch1", "ghost")
	require.Error(t, err)

	rosterErr, ok := err.(*student.EmptyRosterError)
	require.True(t, ok, "want *EmptyRosterError, got %T", err)
	assert.Empty(t, rosterErr.OwnedSchoolIDs)
	assert.Equal(t, "teacher ghost owns no active students", rosterErr.Error())
}

func TestRoster_ClassLabels_unassigned(t *testing.T) {
	roster := student.Roster{Students: []student.Student{
		{ID: "a", ClassLabel: "3A"},
		{ID: "b", ClassLabel: ""},
	}}
	assert.ElementsMatch(t, []string{"3A", "unassigned"}, roster.ClassLabels())
}
