// Package memory is a process-local gateway used for development and tests.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"reikningar/internal/core"
	"reikningar/internal/gateway"
)

var _ gateway.Gateway = (*Store)(nil)

type Store struct {
	mu       sync.RWMutex
	bills    []core.Bill
	billIdx  map[string]int
	txs      []core.Transaction
	txHashes map[string]struct{}
}

func New() *Store {
	return &Store{
		billIdx:  make(map[string]int),
		txHashes: make(map[string]struct{}),
	}
}

// NewFromFiles seeds the store from seed_bills.txt under base. Each line is
// "creditor;DD.MM.YYYY;amount[;recurring]"; malformed lines are skipped.
func NewFromFiles(base string) *Store {
	s := New()
	for _, line := range readLines(filepath.Join(base, "seed_bills.txt")) {
		b, ok := parseSeedBill(line)
		if !ok {
			continue
		}
		_, _ = s.UpsertBill(context.Background(), b)
	}
	return s
}

func (s *Store) UpsertBill(_ context.Context, b core.Bill) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.billIdx[b.ID]; ok {
		return false, nil
	}
	s.billIdx[b.ID] = len(s.bills)
	s.bills = append(s.bills, b)
	return true, nil
}

func (s *Store) ListBills(_ context.Context) ([]core.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Bill(nil), s.bills...), nil
}

func (s *Store) GetBill(_ context.Context, id string) (core.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.billIdx[id]
	if !ok {
		return core.Bill{}, fmt.Errorf("bill %s: %w", id, core.ErrNotFound)
	}
	return s.bills[i], nil
}

func (s *Store) UpdateBillRecurring(_ context.Context, id string, recurring bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.billIdx[id]
	if !ok {
		return fmt.Errorf("bill %s: %w", id, core.ErrNotFound)
	}
	s.bills[i] = s.bills[i].WithRecurring(recurring)
	return nil
}

func (s *Store) DeleteBill(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.billIdx[id]
	if !ok {
		return fmt.Errorf("bill %s: %w", id, core.ErrNotFound)
	}
	s.bills = append(s.bills[:i], s.bills[i+1:]...)
	delete(s.billIdx, id)
	for j := i; j < len(s.bills); j++ {
		s.billIdx[s.bills[j].ID] = j
	}
	return nil
}

func (s *Store) UpsertTransaction(_ context.Context, t core.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txHashes[t.Hash]; ok {
		return false, nil
	}
	s.txHashes[t.Hash] = struct{}{}
	s.txs = append(s.txs, t)
	return true, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) Close() error { return nil }

func parseSeedBill(line string) (core.Bill, bool) {
	parts := strings.Split(line, ";")
	if len(parts) < 3 {
		return core.Bill{}, false
	}
	creditor := strings.TrimSpace(parts[0])
	date, ok := core.NormalizeBillDate(parts[1])
	if creditor == "" || !ok {
		return core.Bill{}, false
	}
	amount := core.ParseBillAmount(parts[2])
	recurring := len(parts) > 3 && strings.EqualFold(strings.TrimSpace(parts[3]), "recurring")
	return core.NewBill(creditor, date, amount, recurring), true
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
