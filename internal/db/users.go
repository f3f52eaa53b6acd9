package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/d3ntaltech/calendrier/internal/config"
	sqlc "github.com/d3ntaltech/calendrier/internal/db/sqlc"
	"github.com/d3ntaltech/calendrier/internal/model"
)

// CredentialVerifier hashes and checks passwords. Plain-text passwords are
// never written to the store.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// SeedUsers inserts the configured accounts, replacing the credential of any
// that already exist.
func (s *Store) SeedUsers(ctx context.Context, verifier CredentialVerifier, users []config.SeedUser) error {
	return s.inTx(ctx, func(q *sqlc.Queries) error {
		for _, user := range users {
			email := normalizeEmail(user.Email)
			if email == "" {
				continue
			}
			if user.Password == "" {
				return fmt.Errorf("seed user %s: password is required", email)
			}

			hash, err := verifier.Hash(user.Password)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", email, err)
			}
			if err := q.UpsertUser(ctx, sqlc.UpsertUserParams{Email: email, PasswordHash: hash}); err != nil {
				return fmt.Errorf("upsert user %s: %w", email, err)
			}
		}
		return nil
	})
}

func (s *Store) Authenticate(ctx context.Context, verifier CredentialVerifier, email, password string) (model.AuthorizedUser, error) {
	normalized := normalizeEmail(email)
	if normalized == "" || password == "" {
		return model.AuthorizedUser{}, ErrInvalidCredentials
	}

	row, err := s.Queries.GetUser(ctx, normalized)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AuthorizedUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.AuthorizedUser{}, err
	}

	if !verifier.Verify(row.PasswordHash, password) {
		return model.AuthorizedUser{}, ErrInvalidCredentials
	}
	return mapUser(row), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.AuthorizedUser, error) {
	rows, err := s.Queries.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]model.AuthorizedUser, 0, len(rows))
	for _, row := range rows {
		users = append(users, mapUser(row))
	}
	return users, nil
}

func mapUser(row sqlc.AuthorizedUser) model.AuthorizedUser {
	return model.AuthorizedUser{Email: row.Email, Hash: row.PasswordHash, CreatedAt: row.CreatedAt}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
