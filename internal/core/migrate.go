// AngelaMos | 2026
// migrate.go

package core

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	enumType("user_role", "'Admin', 'Member'"),
	enumType("province", "'Jawa Timur', 'Jawa Barat', 'Jawa Tengah'"),
	enumType("repository_status", "'Belum', 'Sudah'"),
	enumType(
		"accreditation_status",
		"'Akreditasi A', 'Akreditasi B', 'Belum Akreditasi'",
	),
	enumType(
		"membership_status",
		"'Pending', 'Active', 'Inactive', 'Rejected'",
	),
	enumType("registration_type", "'Pendaftaran Baru', 'Perpanjangan'"),
	enumType("payment_status", "'Pending', 'Confirmed', 'Rejected'"),

	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          user_role NOT NULL DEFAULT 'Member',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS members (
		id                    BIGSERIAL PRIMARY KEY,
		user_id               BIGINT NOT NULL UNIQUE
		                      REFERENCES users(id) ON DELETE CASCADE,
		university_name       TEXT NOT NULL,
		library_head_name     TEXT NOT NULL,
		library_head_phone    VARCHAR(20) NOT NULL,
		pic_name              TEXT NOT NULL,
		pic_phone             VARCHAR(20) NOT NULL,
		institution_address   TEXT NOT NULL,
		province              province NOT NULL,
		institution_email     VARCHAR(255) NOT NULL,
		library_website_url   TEXT,
		opac_url              TEXT,
		repository_status     repository_status NOT NULL,
		book_collection_count INTEGER NOT NULL CHECK (book_collection_count >= 0),
		accreditation_status  accreditation_status NOT NULL,
		membership_status     membership_status NOT NULL DEFAULT 'Pending',
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS registrations (
		id                BIGSERIAL PRIMARY KEY,
		member_id         BIGINT NOT NULL
		                  REFERENCES members(id) ON DELETE CASCADE,
		registration_type registration_type NOT NULL,
		payment_proof_url TEXT,
		payment_status    payment_status NOT NULL DEFAULT 'Pending',
		admin_notes       TEXT,
		receipt_url       TEXT,
		certificate_url   TEXT,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_registrations_member_id
		ON registrations (member_id)`,
}

func enumType(name, values string) string {
	return fmt.Sprintf(`DO $$ BEGIN
		CREATE TYPE %s AS ENUM (%s);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`, name, values)
}

// Migrate creates the enum types and tables if they are missing. Every
// statement is idempotent, so it is safe to run on each start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	return InTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}
