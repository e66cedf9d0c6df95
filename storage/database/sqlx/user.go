package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const userCols = "id, school_id, name, username, email, is_active, roles, password_hash, created_at, updated_at"

type userRow struct {
	ID           string         `db:"id"`
	SchoolID     string         `db:"school_id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r userRow) domain() user.User {
	return user.User{
		ID:           r.ID,
		SchoolID:     r.SchoolID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		IsActive:     r.IsActive,
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, exec ...core.DBExecutor) error {
	var exists bool
	q := "SELECT EXISTS (SELECT 1 FROM app_user WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2))"
	err := getExec(repo.exec, exec).QueryRowContext(ctx, q, username, email).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	now := time.Now().UTC()
	usr.CreatedAt, usr.UpdatedAt = now, now

	q := `INSERT INTO app_user (` + userCols + `)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := getExec(repo.exec, exec).ExecContext(
		ctx, q, usr.ID, usr.SchoolID, usr.Name, usr.Username, usr.Email,
		usr.IsActive, pq.StringArray(usr.Roles), usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) getUserBy(ctx context.Context, exec core.DBExecutor, cond string, args ...interface{}) (user.User, error) {
	var rows []userRow
	q := "SELECT " + userCols + " FROM app_user WHERE " + cond
	if err := queryAll(ctx, exec, &rows, q, args...); err != nil {
		return user.User{}, errors.Wrap(err, "getting user")
	}
	if len(rows) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return rows[0].domain(), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getUserBy(ctx, getExec(repo.exec, exec), "id = $1", id)
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getUserBy(ctx, getExec(repo.exec, exec), "LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)", username)
}
