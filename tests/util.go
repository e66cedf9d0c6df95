// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

// NewConfig returns a test configuration: UTC server day, fixed secret.
func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = false
	conf.SecretKey = "secret"
	conf.Server.Timezone = time.UTC
	return conf
}

// Logger is a core.Logger that records nothing and fails nothing; Fatal
// degrades to Error so a test cannot be killed by a logging path.
type Logger struct{}

var _ core.Logger = (*Logger)(nil)

func (Logger) Enable(bool)                  {}
func (Logger) Debug(string, ...interface{}) {}
func (Logger) Info(string, ...interface{})  {}
func (Logger) Warn(string, ...interface{})  {}
func (Logger) Error(string, ...interface{}) {}
func (Logger) Fatal(string, ...interface{}) {}

func CreateUser(t *testing.T, repo user.Repository, schoolID, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		SchoolID:  schoolID,
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, schoolID, teacherID, name, classLabel string, isActive bool) student.Student {
	t.Helper()
	now := time.Now().UTC()
	std, err := repo.CreateStudent(context.Background(), student.Student{
		SchoolID:   schoolID,
		TeacherID:  teacherID,
		Name:       name,
		ClassLabel: classLabel,
		Level:      1,
		IsActive:   isActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}
