package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// Insert adds a new token. Returns ErrDuplicateKey if address exists.
func (s *TokenStore) Insert(ctx context.Context, t *domain.Token) (err error) {
	if t == nil || t.Address == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_token", start, err) }(time.Now())

	query := `
		INSERT INTO tokens (address, symbol, created_at)
		VALUES ($1, $2, $3)
	`

	var created *time.Time
	if t.CreatedAt != nil {
		utc := t.CreatedAt.UTC()
		created = &utc
	}

	_, err = s.pool.Exec(ctx, query, t.Address, t.Symbol, created)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// GetByAddress retrieves a token by mint address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByAddress(ctx context.Context, address string) (t *domain.Token, err error) {
	defer func(start time.Time) { observe("get_token", start, err) }(time.Now())

	query := `
		SELECT address, symbol, created_at
		FROM tokens
		WHERE address = $1
	`

	t, err = scanToken(s.pool.QueryRow(ctx, query, address))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by address: %w", err)
	}
	return t, nil
}

// List retrieves all tokens ordered by address.
func (s *TokenStore) List(ctx context.Context) (tokens []*domain.Token, err error) {
	defer func(start time.Time) { observe("list_tokens", start, err) }(time.Now())

	query := `
		SELECT address, symbol, created_at
		FROM tokens
		ORDER BY address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	tokens = make([]*domain.Token, 0)
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return tokens, nil
}

func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	var created *time.Time
	if err := row.Scan(&t.Address, &t.Symbol, &created); err != nil {
		return nil, err
	}
	if created != nil {
		utc := created.UTC()
		t.CreatedAt = &utc
	}
	return &t, nil
}
