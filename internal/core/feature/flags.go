// Package feature provides feature flag evaluation.
package feature

import (
	"context"
	"sync"
)

// FlagProvider provides feature flag evaluation.
// Abstraction allows different backends: in-memory, Redis, LaunchDarkly, etc.
type FlagProvider interface {
	// IsEnabled checks if feature is enabled for context
	IsEnabled(ctx context.Context, flag string) bool

	// GetValue returns typed value for feature configuration
	GetValue(ctx context.Context, flag string) any
}

// Feature flag names (constants for type safety)
const (
	// FlagDocumentBankReversal makes document updates revert the bank
	// ledger before reapplying. Off by default: the historical behavior
	// left the old bank effect in place on update.
	FlagDocumentBankReversal = "corrected_document_bank_reversal"

	// FlagPaymentPartyReversal makes payment updates revert the party
	// ledger before reapplying. Off by default for the same reason.
	FlagPaymentPartyReversal = "corrected_payment_party_reversal"
)

// InMemoryFlags is a simple in-memory feature flag provider.
// Suitable for single-process deployments and testing.
type InMemoryFlags struct {
	mu     sync.RWMutex
	flags  map[string]bool
	values map[string]any
}

// NewInMemoryFlags creates an in-memory flag provider.
func NewInMemoryFlags() *InMemoryFlags {
	return &InMemoryFlags{
		flags:  make(map[string]bool),
		values: make(map[string]any),
	}
}

func (f *InMemoryFlags) IsEnabled(ctx context.Context, flag string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.flags[flag]
}

func (f *InMemoryFlags) GetValue(ctx context.Context, flag string) any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[flag]
}

// SetFlag sets a boolean flag (for testing/admin).
func (f *InMemoryFlags) SetFlag(flag string, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[flag] = enabled
}

// SetValue sets a configuration value.
func (f *InMemoryFlags) SetValue(flag string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[flag] = value
}

// Ensure interface compliance at compile time.
var _ FlagProvider = (*InMemoryFlags)(nil)
