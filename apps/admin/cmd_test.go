package main

import (
	"bytes"
	"context"
	"database/sql"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/user"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	logger = log.New(&bytes.Buffer{}, "", 0)

	db, err := dummydb.Open()
	require.NoError(t, err)

	return &commandLine{
		usrSvc:  user.NewService(dummydb.NewUserRepository(db)),
		stdRepo: dummydb.NewStudentRepository(db),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_run_help(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no args", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"yolo"}, wantErr: errHelp},
		{name: "addteacher missing flags", args: []string{"addteacher", "-name", "T"}, wantErr: errHelp},
		{name: "addstudent missing flags", args: []string{"addstudent", "-school", "sch1"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"admin"}, tt.args...)
			assert.Equal(t, tt.wantErr, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var gotCommand string
	var gotArgs []string
	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		gotCommand = command
		gotArgs = args
		return nil
	}

	require.NoError(t, cli.run([]string{"admin", "migratedb"}))
	assert.Equal(t, "up", gotCommand)

	require.NoError(t, cli.run([]string{"admin", "migratedb", "down-to", "1"}))
	assert.Equal(t, "down-to", gotCommand)
	assert.Equal(t, []string{"1"}, gotArgs)
}

func Test_commandLine_addTeacher(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cr3t!"), nil }

	err := cli.run([]string{"admin", "addteacher", "-school", "sch1", "-name", "Teacher", "-username", "teacher01", "-admin"})
	require.NoError(t, err)

	usr, err := cli.usrSvc.GetByUsernameOrEmail(context.Background(), "teacher01")
	require.NoError(t, err)
	assert.True(t, usr.IsAdmin())
	assert.True(t, usr.IsTeacher())
	assert.NoError(t, usr.CheckPassword("s3cr3t!"))
}
