package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/storage"
)

// Seed is the JSON file accepted by the migrate command.
//
//	{
//	  "tokens": [{"address": "...", "symbol": "BONK", "created_at": "2024-01-02T00:00:00Z"}],
//	  "known_accounts": [{"address": "...", "label": "Binance 1", "kind": "exchange"}]
//	}
type Seed struct {
	Tokens        []SeedToken   `json:"tokens"`
	KnownAccounts []SeedAccount `json:"known_accounts"`
}

// SeedToken is one token registry entry.
type SeedToken struct {
	Address   string     `json:"address"`
	Symbol    string     `json:"symbol"`
	CreatedAt *time.Time `json:"created_at"`
}

// SeedAccount is one labeled account.
type SeedAccount struct {
	Address string `json:"address"`
	Label   string `json:"label"`
	Kind    string `json:"kind"`
}

// SeedStats counts what ApplySeed did.
type SeedStats struct {
	TokensInserted   int
	AccountsInserted int
	Skipped          int // already present
}

// LoadSeed reads and validates a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate checks every address and account kind.
func (s *Seed) Validate() error {
	for i, t := range s.Tokens {
		if err := domain.ValidateAddress(t.Address); err != nil {
			return fmt.Errorf("tokens[%d]: %w", i, err)
		}
	}
	for i, a := range s.KnownAccounts {
		if err := domain.ValidateAddress(a.Address); err != nil {
			return fmt.Errorf("known_accounts[%d]: %w", i, err)
		}
		if !validKind(domain.KnownAccountKind(a.Kind)) {
			return fmt.Errorf("known_accounts[%d]: unknown kind %q", i, a.Kind)
		}
	}
	return nil
}

func validKind(k domain.KnownAccountKind) bool {
	switch k {
	case domain.AccountWhale, domain.AccountExchange, domain.AccountMarketMaker, domain.AccountLiquidityPool:
		return true
	}
	return false
}

// ApplySeed inserts the seed into the registries. Existing rows are skipped,
// so a seed file can be applied repeatedly.
func ApplySeed(ctx context.Context, stores *Stores, seed *Seed, now time.Time) (SeedStats, error) {
	var stats SeedStats

	for _, t := range seed.Tokens {
		tok := &domain.Token{Address: t.Address, Symbol: t.Symbol, CreatedAt: t.CreatedAt}
		err := stores.Tokens.Insert(ctx, tok)
		switch {
		case err == nil:
			stats.TokensInserted++
		case errors.Is(err, storage.ErrDuplicateKey):
			stats.Skipped++
		default:
			return stats, fmt.Errorf("insert token %s: %w", t.Address, err)
		}
	}

	for _, a := range seed.KnownAccounts {
		acc := &domain.KnownAccount{
			Address:   a.Address,
			Label:     a.Label,
			Kind:      domain.KnownAccountKind(a.Kind),
			CreatedAt: now.UnixMilli(),
		}
		err := stores.KnownAccounts.Insert(ctx, acc)
		switch {
		case err == nil:
			stats.AccountsInserted++
		case errors.Is(err, storage.ErrDuplicateKey):
			stats.Skipped++
		default:
			return stats, fmt.Errorf("insert known account %s: %w", a.Address, err)
		}
	}

	return stats, nil
}
