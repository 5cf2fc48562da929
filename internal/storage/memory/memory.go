// Package memory provides a simple in-memory implementation used for
// development and tests. It keeps code paths easy to follow while allowing a
// real database to be plugged in via the postgres store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oskarw/glbook/internal/audit"
	"github.com/oskarw/glbook/internal/errs"
	"github.com/oskarw/glbook/internal/gl"
)

// Store is an in-memory implementation of every repository and writer used by
// the services, plus the audit sink. It is guarded by an RWMutex for
// concurrent reads/writes.
type Store struct {
	mu        sync.RWMutex
	companies map[uuid.UUID]gl.Company
	// accounts: companyID -> lower(code) -> account
	accounts map[uuid.UUID]map[string]gl.Account
	// transactions: companyID -> transactionNo -> transaction with entries
	transactions map[uuid.UUID]map[int]gl.Transaction
	auditEvents  []audit.Event
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		companies:    make(map[uuid.UUID]gl.Company),
		accounts:     make(map[uuid.UUID]map[string]gl.Account),
		transactions: make(map[uuid.UUID]map[int]gl.Transaction),
	}
}

// Seed helpers for local dev/tests.
func (s *Store) SeedCompany(c gl.Company) {
	s.mu.Lock()
	s.companies[c.ID] = c
	s.mu.Unlock()
}

func (s *Store) SeedAccount(a gl.Account) {
	s.mu.Lock()
	m, ok := s.accounts[a.CompanyID]
	if !ok {
		m = make(map[string]gl.Account)
		s.accounts[a.CompanyID] = m
	}
	m[strings.ToLower(a.Code)] = a
	s.mu.Unlock()
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.companies = map[uuid.UUID]gl.Company{}
	s.accounts = map[uuid.UUID]map[string]gl.Account{}
	s.transactions = map[uuid.UUID]map[int]gl.Transaction{}
	s.auditEvents = nil
	s.mu.Unlock()
}

// AuditEvents returns a copy of the recorded audit trail (test helper).
func (s *Store) AuditEvents() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, len(s.auditEvents))
	copy(out, s.auditEvents)
	return out
}

// --- Companies ---

// Company implements company.Repo.
func (s *Store) Company(_ context.Context, companyID uuid.UUID) (gl.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[companyID]
	if !ok {
		return gl.Company{}, errs.ErrNotFound
	}
	return c, nil
}

// Companies implements company.Repo.
func (s *Store) Companies(_ context.Context, q string, page, pageSize int) ([]gl.Company, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]gl.Company, 0, len(s.companies))
	needle := strings.ToLower(q)
	for _, c := range s.companies {
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := len(out)
	return pageOf(out, page, pageSize), total, nil
}

// CompanyNameTaken implements company.Repo.
func (s *Store) CompanyNameTaken(_ context.Context, name string, excludeID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.companies {
		if c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// CompanyOwnsData implements company.Repo.
func (s *Store) CompanyOwnsData(_ context.Context, companyID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.accounts[companyID]) > 0 {
		return true, nil
	}
	return len(s.transactions[companyID]) > 0, nil
}

// CreateCompany implements company.Writer.
func (s *Store) CreateCompany(_ context.Context, c gl.Company) (gl.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.companies {
		if strings.EqualFold(existing.Name, c.Name) {
			return gl.Company{}, errs.ErrDuplicateCompanyName
		}
	}
	s.companies[c.ID] = c
	return c, nil
}

// UpdateCompany implements company.Writer.
func (s *Store) UpdateCompany(_ context.Context, c gl.Company) (gl.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[c.ID]; !ok {
		return gl.Company{}, errs.ErrNotFound
	}
	s.companies[c.ID] = c
	return c, nil
}

// DeleteCompany implements company.Writer.
func (s *Store) DeleteCompany(_ context.Context, companyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.accounts[companyID]) > 0 || len(s.transactions[companyID]) > 0 {
		return errs.ErrConflict
	}
	delete(s.companies, companyID)
	return nil
}

// --- Accounts ---

// Account implements account.Repo.
func (s *Store) Account(_ context.Context, companyID uuid.UUID, code string) (gl.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[companyID][strings.ToLower(code)]
	if !ok {
		return gl.Account{}, errs.ErrNotFound
	}
	return a, nil
}

// ListAccounts implements account.Repo.
func (s *Store) ListAccounts(_ context.Context, companyID uuid.UUID, q string, page, pageSize int) ([]gl.Account, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(q)
	out := make([]gl.Account, 0, len(s.accounts[companyID]))
	for _, a := range s.accounts[companyID] {
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.Code), needle) &&
			!strings.Contains(strings.ToLower(a.Name), needle) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	total := len(out)
	return pageOf(out, page, pageSize), total, nil
}

// Accounts implements report.Repo and search.Repo.
func (s *Store) Accounts(_ context.Context, companyID uuid.UUID) ([]gl.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]gl.Account, 0, len(s.accounts[companyID]))
	for _, a := range s.accounts[companyID] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// AccountsByCodes implements posting.Repo.
func (s *Store) AccountsByCodes(_ context.Context, companyID uuid.UUID, codes []string) (map[string]gl.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]gl.Account, len(codes))
	for _, code := range codes {
		key := strings.ToLower(strings.TrimSpace(code))
		if a, ok := s.accounts[companyID][key]; ok {
			out[key] = a
		}
	}
	return out, nil
}

// CreateAccount implements account.Writer.
func (s *Store) CreateAccount(_ context.Context, a gl.Account) (gl.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.accounts[a.CompanyID]
	if !ok {
		m = make(map[string]gl.Account)
		s.accounts[a.CompanyID] = m
	}
	key := strings.ToLower(a.Code)
	if _, exists := m[key]; exists {
		return gl.Account{}, errs.ErrDuplicateAccountCode
	}
	m[key] = a
	return a, nil
}

// UpdateAccount implements account.Writer.
func (s *Store) UpdateAccount(_ context.Context, a gl.Account) (gl.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(a.Code)
	if _, ok := s.accounts[a.CompanyID][key]; !ok {
		return gl.Account{}, errs.ErrNotFound
	}
	s.accounts[a.CompanyID][key] = a
	return a, nil
}

// DeleteAccount implements account.Writer. Restrict-on-delete: accounts
// referenced by entries cannot be removed.
func (s *Store) DeleteAccount(_ context.Context, companyID uuid.UUID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(code)
	if _, ok := s.accounts[companyID][key]; !ok {
		return nil
	}
	for _, tx := range s.transactions[companyID] {
		for _, e := range tx.Entries {
			if strings.EqualFold(e.AccountCode, code) {
				return errs.ErrConflict
			}
		}
	}
	delete(s.accounts[companyID], key)
	return nil
}

// --- Transactions ---

// Transaction implements posting.Repo.
func (s *Store) Transaction(_ context.Context, companyID uuid.UUID, transactionNo int) (gl.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[companyID][transactionNo]
	if !ok {
		return gl.Transaction{}, errs.ErrNotFound
	}
	return copyTx(tx), nil
}

// TransactionExists implements posting.Repo.
func (s *Store) TransactionExists(_ context.Context, companyID uuid.UUID, transactionNo int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.transactions[companyID][transactionNo]
	return ok, nil
}

// Transactions implements posting.Repo: date desc then transaction number
// asc, optional calendar-day date range, with the unpaged total.
func (s *Store) Transactions(_ context.Context, companyID uuid.UUID, page, pageSize int, from, to *time.Time) ([]gl.Transaction, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]gl.Transaction, 0, len(s.transactions[companyID]))
	for _, tx := range s.transactions[companyID] {
		if from != nil && tx.Date.Before(startOfDay(*from)) {
			continue
		}
		if to != nil && !tx.Date.Before(startOfDay(*to).AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, copyTx(tx))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].TransactionNo < out[j].TransactionNo
	})
	total := len(out)
	return pageOf(out, page, pageSize), total, nil
}

// TransactionHeaders implements search.Repo.
func (s *Store) TransactionHeaders(_ context.Context, companyID uuid.UUID) ([]gl.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]gl.Transaction, 0, len(s.transactions[companyID]))
	for _, tx := range s.transactions[companyID] {
		hdr := tx
		hdr.Entries = nil
		out = append(out, hdr)
	}
	return out, nil
}

// Entries implements report.Repo and search.Repo.
func (s *Store) Entries(_ context.Context, companyID uuid.UUID) ([]gl.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]gl.Entry, 0)
	for _, tx := range s.transactions[companyID] {
		out = append(out, tx.Entries...)
	}
	return out, nil
}

// CreateTransaction implements posting.Writer. The map insert is the
// authoritative uniqueness backstop for concurrent creates.
func (s *Store) CreateTransaction(_ context.Context, tx gl.Transaction) (gl.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.transactions[tx.CompanyID]
	if !ok {
		m = make(map[int]gl.Transaction)
		s.transactions[tx.CompanyID] = m
	}
	if _, exists := m[tx.TransactionNo]; exists {
		return gl.Transaction{}, errs.ErrDuplicateTransactionNo
	}
	m[tx.TransactionNo] = copyTx(tx)
	return tx, nil
}

// ReplaceTransaction implements posting.Writer.
func (s *Store) ReplaceTransaction(_ context.Context, tx gl.Transaction) (gl.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.transactions[tx.CompanyID]
	if _, ok := m[tx.TransactionNo]; !ok {
		return gl.Transaction{}, errs.ErrNotFound
	}
	m[tx.TransactionNo] = copyTx(tx)
	return tx, nil
}

// DeleteTransaction implements posting.Writer.
func (s *Store) DeleteTransaction(_ context.Context, companyID uuid.UUID, transactionNo int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transactions[companyID], transactionNo)
	return nil
}

// --- Audit sink ---

// AppendAuditEvent implements audit.Sink.
func (s *Store) AppendAuditEvent(_ context.Context, ev audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditEvents = append(s.auditEvents, ev)
	return nil
}

func copyTx(tx gl.Transaction) gl.Transaction {
	out := tx
	out.Entries = make([]gl.Entry, len(tx.Entries))
	copy(out.Entries, tx.Entries)
	return out
}

func pageOf[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
