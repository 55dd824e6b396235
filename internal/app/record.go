package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/provider/birdeye"
	"virtuoso-gem-finder/internal/storage"
)

// ParseTimeframes parses a comma-separated timeframe list such as "15m,1h,4h".
func ParseTimeframes(s string) ([]domain.Timeframe, error) {
	var out []domain.Timeframe
	seen := make(map[domain.Timeframe]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tf, err := domain.ParseTimeframe(part)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[tf]; dup {
			continue
		}
		seen[tf] = struct{}{}
		out = append(out, tf)
	}
	if len(out) == 0 {
		return nil, errors.New("no timeframes given")
	}
	return out, nil
}

// StreamSubscriptions expands tokens × timeframes into stream feeds.
// With no explicit tokens, every token of the registry is recorded.
func StreamSubscriptions(ctx context.Context, tokens []string, registry storage.TokenStore, tfs []domain.Timeframe) ([]birdeye.Subscription, error) {
	if len(tokens) == 0 && registry != nil {
		list, err := registry.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tokens: %w", err)
		}
		for _, t := range list {
			tokens = append(tokens, t.Address)
		}
	}
	if len(tokens) == 0 {
		return nil, errors.New("no tokens to record")
	}

	var subs []birdeye.Subscription
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if err := domain.ValidateAddress(token); err != nil {
			return nil, fmt.Errorf("token %q: %w", token, err)
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		for _, tf := range tfs {
			subs = append(subs, birdeye.Subscription{Token: token, Timeframe: tf})
		}
	}
	return subs, nil
}
