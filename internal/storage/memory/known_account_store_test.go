package memory

import (
	"context"
	"errors"
	"testing"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/storage"
)

func TestKnownAccountStore_InsertAndGetAll(t *testing.T) {
	store := NewKnownAccountStore()
	ctx := context.Background()

	accounts := []*domain.KnownAccount{
		{Address: "w2", Label: "fund-b", Kind: domain.AccountWhale},
		{Address: "w1", Label: "fund-a", Kind: domain.AccountWhale},
		{Address: "x1", Label: "cex", Kind: domain.AccountExchange},
	}
	for _, a := range accounts {
		if err := store.Insert(ctx, a); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 3 || all[0].Address != "w1" {
		t.Errorf("Expected 3 accounts ordered by address, got %v", all)
	}

	got, err := store.GetByAddress(ctx, "x1")
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if got.Kind != domain.AccountExchange {
		t.Errorf("Expected exchange, got %s", got.Kind)
	}
}

func TestKnownAccountStore_Errors(t *testing.T) {
	store := NewKnownAccountStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.KnownAccount{Address: "a"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for missing kind, got %v", err)
	}
	_ = store.Insert(ctx, &domain.KnownAccount{Address: "a", Kind: domain.AccountWhale})
	if err := store.Insert(ctx, &domain.KnownAccount{Address: "a", Kind: domain.AccountWhale}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
	if _, err := store.GetByAddress(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
