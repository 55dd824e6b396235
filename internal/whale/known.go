package whale

import "virtuoso-gem-finder/internal/domain"

// KnownAccounts is a read-only lookup of labeled large accounts.
// It is built once and never mutated, so it is safe for concurrent use.
type KnownAccounts struct {
	byAddress map[string]domain.KnownAccount
}

// NewKnownAccounts builds a lookup. Later entries win on duplicate addresses.
func NewKnownAccounts(accounts []domain.KnownAccount) *KnownAccounts {
	k := &KnownAccounts{byAddress: make(map[string]domain.KnownAccount, len(accounts))}
	for _, a := range accounts {
		if a.Address == "" {
			continue
		}
		k.byAddress[a.Address] = a
	}
	return k
}

// Lookup returns the known account for address.
func (k *KnownAccounts) Lookup(address string) (domain.KnownAccount, bool) {
	if k == nil {
		return domain.KnownAccount{}, false
	}
	a, ok := k.byAddress[address]
	return a, ok
}

// Len returns the number of known accounts.
func (k *KnownAccounts) Len() int {
	if k == nil {
		return 0
	}
	return len(k.byAddress)
}
