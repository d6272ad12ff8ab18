package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Fatal("nil error is not a violation")
	}
	if IsUniqueViolation(errors.New("connection refused")) {
		t.Fatal("unrelated error is not a violation")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}) {
		t.Fatal("expected pg unique violation to match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key violation must not match")
	}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", errors.New("UNIQUE constraint failed: users.email"))) {
		t.Fatal("expected sqlite violation to match")
	}
}
