package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reikningar/internal/core"
	"reikningar/internal/gateway"
)

// Snapshot is an immutable view of every stored record. Callers must not
// modify its slices.
type Snapshot struct {
	Bills        []core.Bill
	Transactions []core.Transaction
	LoadedAt     time.Time

	// Version increases with every successful Refresh; zero means never loaded.
	Version uint64
}

// State owns the gateway handle and the current snapshot. One State is
// built per process and shared by the CLI, the HTTP API and the worker.
type State struct {
	gw gateway.Gateway

	// refreshMu serializes Refresh so a slow reload cannot install older
	// lists over a newer one.
	refreshMu sync.Mutex

	mu   sync.RWMutex
	snap Snapshot
}

// NewState wraps gw. The snapshot is empty until Refresh is called.
func NewState(gw gateway.Gateway) *State {
	return &State{gw: gw}
}

// Gateway returns the underlying persistence gateway.
func (s *State) Gateway() gateway.Gateway {
	return s.gw
}

// Refresh reloads both record lists from the gateway and swaps the snapshot.
func (s *State) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	bills, err := s.gw.ListBills(ctx)
	if err != nil {
		return fmt.Errorf("load bills: %w", err)
	}
	txs, err := s.gw.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	s.mu.Lock()
	s.snap = Snapshot{Bills: bills, Transactions: txs, LoadedAt: time.Now(), Version: s.snap.Version + 1}
	s.mu.Unlock()
	return nil
}

// Snapshot returns the last loaded snapshot.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
