// Package account defines the user-account store contract the support agent
// depends on, plus an in-memory implementation for tests and demos. Durable
// persistence is an external collaborator; deployments provide their own
// Store backed by whatever database they run.
package account

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/switchboard-ai/switchboard/core"
)

// ErrAccountNotFound is returned when no account exists for a user id.
var ErrAccountNotFound = errors.New("account not found")

// Account is one user account snapshot.
type Account struct {
	UserID  string  `json:"user_id"`
	Name    string  `json:"name"`
	Status  string  `json:"status"` // "active", "suspended", ...
	Balance float64 `json:"balance"`
}

// Transaction is one account ledger entry.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Ticket is a support ticket opened on behalf of a user.
type Ticket struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	Issue   string    `json:"issue"`
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
}

// Store is the account backend contract consumed by the support agent.
type Store interface {
	// Account returns the account for the user id, or ErrAccountNotFound.
	Account(ctx context.Context, userID string) (*Account, error)

	// Transactions returns up to limit entries, newest first.
	Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error)

	// CreateTicket opens a support ticket and returns it.
	CreateTicket(ctx context.Context, userID, issue string) (*Ticket, error)

	// ServiceStatus reports the current platform status line.
	ServiceStatus(ctx context.Context) (string, error)
}

// InMemoryStore is a process-local Store guarded by an RWMutex. Seed it with
// accounts and transactions during startup.
type InMemoryStore struct {
	mu           sync.RWMutex
	accounts     map[string]Account
	transactions map[string][]Transaction
	tickets      map[string][]Ticket
	status       string
}

// NewInMemoryStore creates an empty store reporting an operational service.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		accounts:     map[string]Account{},
		transactions: map[string][]Transaction{},
		tickets:      map[string][]Ticket{},
		status:       "all services operational",
	}
}

// SeedAccount inserts or replaces an account.
func (s *InMemoryStore) SeedAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.UserID] = a
}

// SeedTransaction appends a ledger entry for its user.
func (s *InMemoryStore) SeedTransaction(t Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = core.NewID()
	}
	s.transactions[t.UserID] = append(s.transactions[t.UserID], t)
}

// SetServiceStatus replaces the reported platform status line.
func (s *InMemoryStore) SetServiceStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Account implements Store.
func (s *InMemoryStore) Account(ctx context.Context, userID string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

// Transactions implements Store, newest first.
func (s *InMemoryStore) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := append([]Transaction(nil), s.transactions[userID]...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// CreateTicket implements Store.
func (s *InMemoryStore) CreateTicket(ctx context.Context, userID, issue string) (*Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[userID]; !ok {
		return nil, ErrAccountNotFound
	}
	t := Ticket{
		ID:      core.NewID(),
		UserID:  userID,
		Issue:   issue,
		Status:  "open",
		Created: time.Now().UTC(),
	}
	s.tickets[userID] = append(s.tickets[userID], t)
	return &t, nil
}

// ServiceStatus implements Store.
func (s *InMemoryStore) ServiceStatus(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, nil
}

// Tickets returns the tickets opened for a user, oldest first.
func (s *InMemoryStore) Tickets(userID string) []Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Ticket(nil), s.tickets[userID]...)
}

var _ Store = (*InMemoryStore)(nil)
