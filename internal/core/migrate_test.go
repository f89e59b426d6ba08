// AngelaMos | 2026
// migrate_test.go

package core_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apptnu/portal/internal/core"
)

var schemaSteps = []string{
	regexp.QuoteMeta("CREATE TYPE user_role AS ENUM ('Admin', 'Member')"),
	regexp.QuoteMeta("CREATE TYPE province AS ENUM ('Jawa Timur', 'Jawa Barat', 'Jawa Tengah')"),
	regexp.QuoteMeta("CREATE TYPE repository_status AS ENUM"),
	regexp.QuoteMeta("CREATE TYPE accreditation_status AS ENUM"),
	regexp.QuoteMeta("CREATE TYPE membership_status AS ENUM"),
	regexp.QuoteMeta("CREATE TYPE registration_type AS ENUM"),
	regexp.QuoteMeta("CREATE TYPE payment_status AS ENUM"),
	`CREATE TABLE IF NOT EXISTS users \((?s:.*)email\s+VARCHAR\(255\) NOT NULL UNIQUE`,
	`CREATE TABLE IF NOT EXISTS members \((?s:.*)user_id\s+BIGINT NOT NULL UNIQUE` +
		`(?s:.*)CHECK \(book_collection_count >= 0\)`,
	`CREATE TABLE IF NOT EXISTS registrations \((?s:.*)REFERENCES members\(id\) ON DELETE CASCADE`,
	regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_registrations_member_id"),
}

func TestMigrateAppliesSchemaInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	for _, step := range schemaSteps {
		mock.ExpectExec(step).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, core.Migrate(t.Context(), sqlx.NewDb(db, "pgx")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRollsBackOnFailedStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	denied := errors.New("permission denied for schema public")

	mock.ExpectBegin()
	for _, step := range schemaSteps[:7] {
		mock.ExpectExec(step).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(schemaSteps[7]).WillReturnError(denied)
	mock.ExpectRollback()

	err = core.Migrate(t.Context(), sqlx.NewDb(db, "pgx"))
	require.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "apply schema")
	require.NoError(t, mock.ExpectationsWereMet())
}
