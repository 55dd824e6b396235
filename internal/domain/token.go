package domain

import "time"

// Token is a discovered token submitted for analysis.
// Corresponds to tokens table in PostgreSQL.
type Token struct {
	Address   string     // mint address
	Symbol    string     // ticker (may be empty)
	CreatedAt *time.Time // on-chain creation time (nullable)
}

// AgeDays returns the token age at now in days, or nil when CreatedAt is unknown.
func (t Token) AgeDays(now time.Time) *float64 {
	if t.CreatedAt == nil {
		return nil
	}
	days := now.Sub(*t.CreatedAt).Seconds() / 86400
	if days < 0 {
		days = 0
	}
	return &days
}
