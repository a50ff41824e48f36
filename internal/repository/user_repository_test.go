package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/alflem/onboarding-api/internal/models"
)

func setupMockRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	return NewUserRepository(gdb), mock
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo, mock := setupMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "organization_id", "created_at", "updated_at"}).
		AddRow(1, "Alice", "alice@acme.test", "hash", "ADMIN", 7, now, now)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = (.+)`).
		WithArgs("alice@acme.test", 1).
		WillReturnRows(rows)

	user, err := repo.FindByEmail("alice@acme.test")
	require.NoError(t, err)
	require.Equal(t, uint64(1), user.ID)
	require.Equal(t, models.RoleAdmin, user.Role)
	require.Equal(t, uint64(7), user.OrganizationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = (.+)`).
		WithArgs("nobody@acme.test", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByEmail("nobody@acme.test")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindPreAssignedRole(t *testing.T) {
	repo, mock := setupMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "email", "role"}).
		AddRow(3, "super@acme.test", "SUPER_ADMIN")

	mock.ExpectQuery(`SELECT (.+) FROM "pre_assigned_roles" WHERE email = (.+)`).
		WithArgs("super@acme.test", 1).
		WillReturnRows(rows)

	pre, err := repo.FindPreAssignedRole("super@acme.test")
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperAdmin, pre.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetBuddy(t *testing.T) {
	repo, mock := setupMockRepo(t)

	buddyID := uint64(5)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "buddy_id"=(.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetBuddy(2, &buddyID))
	require.NoError(t, mock.ExpectationsWereMet())
}
