package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/storage"
)

// KnownAccountStore implements storage.KnownAccountStore using PostgreSQL.
type KnownAccountStore struct {
	pool *Pool
}

// NewKnownAccountStore creates a new KnownAccountStore.
func NewKnownAccountStore(pool *Pool) *KnownAccountStore {
	return &KnownAccountStore{pool: pool}
}

// Compile-time interface check.
var _ storage.KnownAccountStore = (*KnownAccountStore)(nil)

// Insert adds a new account. Returns ErrDuplicateKey if address exists.
func (s *KnownAccountStore) Insert(ctx context.Context, a *domain.KnownAccount) (err error) {
	if a == nil || a.Address == "" || a.Kind == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_known_account", start, err) }(time.Now())

	query := `
		INSERT INTO known_accounts (address, label, kind, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = s.pool.Exec(ctx, query, a.Address, a.Label, string(a.Kind), a.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert known account: %w", err)
	}
	return nil
}

// GetByAddress retrieves an account by address. Returns ErrNotFound if not exists.
func (s *KnownAccountStore) GetByAddress(ctx context.Context, address string) (a *domain.KnownAccount, err error) {
	defer func(start time.Time) { observe("get_known_account", start, err) }(time.Now())

	query := `
		SELECT address, label, kind, created_at
		FROM known_accounts
		WHERE address = $1
	`

	a, err = scanKnownAccount(s.pool.QueryRow(ctx, query, address))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get known account: %w", err)
	}
	return a, nil
}

// GetAll retrieves all accounts ordered by address.
func (s *KnownAccountStore) GetAll(ctx context.Context) (accounts []*domain.KnownAccount, err error) {
	defer func(start time.Time) { observe("list_known_accounts", start, err) }(time.Now())

	query := `
		SELECT address, label, kind, created_at
		FROM known_accounts
		ORDER BY address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query known accounts: %w", err)
	}
	defer rows.Close()

	accounts = make([]*domain.KnownAccount, 0)
	for rows.Next() {
		a, err := scanKnownAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan known account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate known accounts: %w", err)
	}
	return accounts, nil
}

func scanKnownAccount(row pgx.Row) (*domain.KnownAccount, error) {
	var a domain.KnownAccount
	var kind string
	if err := row.Scan(&a.Address, &a.Label, &kind, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Kind = domain.KnownAccountKind(kind)
	return &a, nil
}
