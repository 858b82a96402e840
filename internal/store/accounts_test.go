// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyrdmud/wyrd/internal/auth"
	"github.com/wyrdmud/wyrd/pkg/errutil"
)

var accountColumns = []string{
	"id", "name", "password_hash", "last_room",
	"failed_attempts", "locked_until", "created_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func testAccount() *auth.Account {
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return &auth.Account{
		ID:           ulid.MustParse("01HZN3XS000000000000000001"),
		Name:         "Ann",
		PasswordHash: "$argon2id$hash",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestAccountRepository_Create(t *testing.T) {
	account := testAccount()
	tests := []struct {
		name      string
		execErr   error
		wantTaken bool
		wantCode  string
	}{
		{name: "inserts"},
		{name: "name taken", execErr: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, wantTaken: true},
		{name: "database error", execErr: errors.New("connection refused"), wantCode: "ACCOUNT_CREATE_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			exp := mock.ExpectExec(`INSERT INTO accounts`).
				WithArgs(account.ID.String(), "Ann", account.PasswordHash, "", 0,
					(*time.Time)(nil), account.CreatedAt, account.UpdatedAt)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err := NewAccountRepository(mock).Create(context.Background(), account)
			switch {
			case tt.wantTaken:
				assert.ErrorIs(t, err, auth.ErrNameTaken)
			case tt.wantCode != "":
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantCode)
				assert.Contains(t, err.Error(), "connection refused")
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestAccountRepository_GetByName(t *testing.T) {
	want := testAccount()
	want.LastRoom = "library"
	want.FailedAttempts = 2
	locked := want.CreatedAt.Add(time.Hour)
	want.LockedUntil = &locked

	mock := newMockPool(t)
	mock.ExpectQuery(`SELECT id, name, password_hash`).
		WithArgs("ann").
		WillReturnRows(pgxmock.NewRows(accountColumns).AddRow(
			want.ID.String(), "Ann", want.PasswordHash, "library",
			2, &locked, want.CreatedAt, want.UpdatedAt,
		))

	got, err := NewAccountRepository(mock).GetByName(context.Background(), "ann")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAccountRepository_GetByNameMissing(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(`SELECT id, name, password_hash`).
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows(accountColumns))

	_, err := NewAccountRepository(mock).GetByName(context.Background(), "nobody")
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestAccountRepository_GetByNameBadID(t *testing.T) {
	mock := newMockPool(t)
	created := time.Now()
	mock.ExpectQuery(`SELECT id, name, password_hash`).
		WithArgs("ann").
		WillReturnRows(pgxmock.NewRows(accountColumns).AddRow(
			"not-a-ulid", "Ann", "hash", "", 0, (*time.Time)(nil), created, created,
		))

	_, err := NewAccountRepository(mock).GetByName(context.Background(), "ann")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "ACCOUNT_INVALID_ID")
	errutil.AssertErrorContext(t, err, "value", "not-a-ulid")
	errutil.AssertErrorContext(t, err, "operation", "get account by name")
}

func TestAccountRepository_Update(t *testing.T) {
	account := testAccount()
	account.FailedAttempts = 3

	mock := newMockPool(t)
	mock.ExpectExec(`UPDATE accounts SET`).
		WithArgs(account.ID.String(), account.PasswordHash, 3, (*time.Time)(nil), account.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE accounts SET`).
		WithArgs(account.ID.String(), account.PasswordHash, 3, (*time.Time)(nil), account.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewAccountRepository(mock)
	require.NoError(t, repo.Update(context.Background(), account))
	assert.ErrorIs(t, repo.Update(context.Background(), account), auth.ErrNotFound)
}

func TestAccountRepository_SaveLocation(t *testing.T) {
	id := testAccount().ID
	now := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	mock := newMockPool(t)
	mock.ExpectExec(`UPDATE accounts SET last_room`).
		WithArgs(id.String(), "library", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE accounts SET last_room`).
		WithArgs(id.String(), "library", now).
		WillReturnError(errors.New("connection reset"))

	repo := NewAccountRepository(mock)
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.SaveLocation(context.Background(), id, "library"))

	err := repo.SaveLocation(context.Background(), id, "library")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "ACCOUNT_UPDATE_FAILED")
	errutil.AssertErrorContext(t, err, "operation", "save location")
}
