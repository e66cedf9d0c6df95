package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/plan"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

type (
	// DB is the in-memory engine used by tests.
	DB struct {
		user    *userTable
		student *studentTable
		plan    *planTable
		item    *itemTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	planTable struct {
		sync.RWMutex
		table map[string]*plan.Plan
	}

	itemTable struct {
		sync.RWMutex
		table map[string]*assignment.WorkItem
	}
)

var _ core.DB = (*DB)(nil)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		student: &studentTable{table: make(map[string]*student.Student)},
		plan:    &planTable{table: make(map[string]*plan.Plan)},
		item:    &itemTable{table: make(map[string]*assignment.WorkItem)},
	}
	return db, nil
}

// core.DB compliance. The dummy repos apply writes directly to their tables
// and ignore the exec override, so these are no-ops; BeginTx hands out a
// transactor whose Commit/Rollback do nothing.

func (db *DB) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (db *DB) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (db *DB) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }
func (db *DB) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (db *DB) QueryRow(string, ...interface{}) *sql.Row { return nil }
func (db *DB) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (db *DB) BeginTx(context.Context, *sql.TxOptions) (core.DBTransactor, error) {
	return noopTx{db}, nil
}

type noopTx struct{ *DB }

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }
