// Package posting implements the double-entry posting engine: validation of
// proposed transactions and atomic create/update/delete of header+entries.
package posting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oskarw/glbook/internal/audit"
	"github.com/oskarw/glbook/internal/errs"
	"github.com/oskarw/glbook/internal/gl"
)

// Repo defines the read operations needed by the service.
type Repo interface {
	// AccountsByCodes resolves accounts for a company keyed by lowercased code.
	AccountsByCodes(ctx context.Context, companyID uuid.UUID, codes []string) (map[string]gl.Account, error)
	// Transaction returns a transaction with entries, or errs.ErrNotFound.
	Transaction(ctx context.Context, companyID uuid.UUID, transactionNo int) (gl.Transaction, error)
	// TransactionExists reports whether (companyID, transactionNo) is taken.
	TransactionExists(ctx context.Context, companyID uuid.UUID, transactionNo int) (bool, error)
	// Transactions lists headers+entries for a company, date desc then
	// transaction number asc, with the unpaged total.
	Transactions(ctx context.Context, companyID uuid.UUID, page, pageSize int, from, to *time.Time) ([]gl.Transaction, int, error)
}

// Writer defines the write operations needed by the service. Each call is one
// atomic unit over header+entries; partial writes must never become visible.
type Writer interface {
	CreateTransaction(ctx context.Context, tx gl.Transaction) (gl.Transaction, error)
	// ReplaceTransaction updates the header's date/description and swaps the
	// full entry set.
	ReplaceTransaction(ctx context.Context, tx gl.Transaction) (gl.Transaction, error)
	// DeleteTransaction removes entries then header. Missing transactions are
	// a no-op, not an error.
	DeleteTransaction(ctx context.Context, companyID uuid.UUID, transactionNo int) error
}

// Line is one proposed posting line as submitted by the caller.
type Line struct {
	AccountCode string
	Amount      decimal.Decimal
	Side        string
	Memo        string
}

// Input is a proposed transaction: header fields plus entry lines.
type Input struct {
	CompanyID     uuid.UUID
	TransactionNo int
	Date          time.Time
	Description   string
	Lines         []Line
}

// Service exposes validation and atomic persistence of transactions.
type Service interface {
	Create(ctx context.Context, in Input) (gl.Transaction, error)
	Update(ctx context.Context, companyID uuid.UUID, transactionNo int, in Input) (gl.Transaction, error)
	Delete(ctx context.Context, companyID uuid.UUID, transactionNo int) error
	Get(ctx context.Context, companyID uuid.UUID, transactionNo int) (gl.Transaction, error)
	List(ctx context.Context, companyID uuid.UUID, page, pageSize int, from, to *time.Time) ([]gl.Transaction, int, error)
}

type service struct {
	repo   Repo
	writer Writer
	audit  audit.Logger
}

func New(repo Repo, writer Writer, aud audit.Logger) Service {
	return &service{repo: repo, writer: writer, audit: aud}
}

// validate applies the posting rules and, on success, returns the normalized
// entry set: each line resolved into debit/credit columns with the account's
// canonical code. It performs no writes.
func (s *service) validate(ctx context.Context, in Input) ([]gl.Entry, error) {
	if len(in.Lines) < 2 {
		return nil, errs.ErrTooFewEntries
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	sides := make([]gl.Side, len(in.Lines))
	for i, ln := range in.Lines {
		if !ln.Amount.IsPositive() {
			return nil, fmt.Errorf("line %d: amount %s: %w", i, ln.Amount, errs.ErrInvalidAmount)
		}
		side, ok := gl.ParseSide(ln.Side)
		if !ok {
			return nil, fmt.Errorf("line %d: side %q: %w", i, ln.Side, errs.ErrInvalidSide)
		}
		sides[i] = side
		if side == gl.SideDebit {
			totalDebit = totalDebit.Add(ln.Amount)
		} else {
			totalCredit = totalCredit.Add(ln.Amount)
		}
	}

	// Rounding rule: half-away-from-zero at 2 decimal places, matching the
	// report aggregation downstream.
	if !totalDebit.Sub(totalCredit).Round(2).IsZero() {
		return nil, fmt.Errorf("DR=%s CR=%s: %w",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2), errs.ErrUnbalanced)
	}

	codes := distinctCodes(in.Lines)
	accounts, err := s.repo.AccountsByCodes(ctx, in.CompanyID, codes)
	if err != nil {
		return nil, fmt.Errorf("resolve accounts: %w", err)
	}
	var missing []string
	for _, code := range codes {
		if _, ok := accounts[strings.ToLower(code)]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return nil, &errs.UnknownAccountsError{Codes: missing}
	}

	entries := make([]gl.Entry, len(in.Lines))
	for i, ln := range in.Lines {
		acc := accounts[strings.ToLower(strings.TrimSpace(ln.AccountCode))]
		e := gl.Entry{
			CompanyID:     in.CompanyID,
			TransactionNo: in.TransactionNo,
			AccountCode:   acc.Code,
			Memo:          ln.Memo,
			Debit:         decimal.Zero,
			Credit:        decimal.Zero,
		}
		if sides[i] == gl.SideDebit {
			e.Debit = ln.Amount
		} else {
			e.Credit = ln.Amount
		}
		entries[i] = e
	}
	return entries, nil
}

func (s *service) Create(ctx context.Context, in Input) (gl.Transaction, error) {
	entries, err := s.validate(ctx, in)
	if err != nil {
		s.auditRejected(ctx, in, err)
		return gl.Transaction{}, err
	}

	// Fast-fail duplicate check; the store's unique constraint remains the
	// authoritative backstop under concurrent creates.
	exists, err := s.repo.TransactionExists(ctx, in.CompanyID, in.TransactionNo)
	if err != nil {
		return gl.Transaction{}, err
	}
	if exists {
		return gl.Transaction{}, errs.ErrDuplicateTransactionNo
	}

	tx := gl.Transaction{
		ID:            uuid.New(),
		CompanyID:     in.CompanyID,
		TransactionNo: in.TransactionNo,
		Date:          in.Date.UTC(),
		Description:   in.Description,
		Entries:       entries,
	}
	for i := range tx.Entries {
		tx.Entries[i].ID = uuid.New()
	}

	saved, err := s.writer.CreateTransaction(ctx, tx)
	if err != nil {
		return gl.Transaction{}, err
	}
	s.audit.Log(ctx, audit.Event{
		CompanyID: in.CompanyID,
		EventType: "AUDIT",
		Level:     "INFO",
		Code:      "TX_CREATE_OK",
		Message:   fmt.Sprintf("created transaction %d", in.TransactionNo),
	})
	return saved, nil
}

func (s *service) Update(ctx context.Context, companyID uuid.UUID, transactionNo int, in Input) (gl.Transaction, error) {
	if in.CompanyID != companyID || in.TransactionNo != transactionNo {
		return gl.Transaction{}, errs.ErrIdentityMismatch
	}

	entries, err := s.validate(ctx, in)
	if err != nil {
		s.auditRejected(ctx, in, err)
		return gl.Transaction{}, err
	}

	existing, err := s.repo.Transaction(ctx, companyID, transactionNo)
	if err != nil {
		return gl.Transaction{}, err
	}

	// Full replace: discard entry identity, keep the header's surrogate ID.
	tx := gl.Transaction{
		ID:            existing.ID,
		CompanyID:     companyID,
		TransactionNo: transactionNo,
		Date:          in.Date.UTC(),
		Description:   in.Description,
		Entries:       entries,
	}
	for i := range tx.Entries {
		tx.Entries[i].ID = uuid.New()
	}

	saved, err := s.writer.ReplaceTransaction(ctx, tx)
	if err != nil {
		return gl.Transaction{}, err
	}
	s.audit.Log(ctx, audit.Event{
		CompanyID: companyID,
		EventType: "AUDIT",
		Level:     "INFO",
		Code:      "TX_UPDATE_OK",
		Message:   fmt.Sprintf("updated transaction %d", transactionNo),
	})
	return saved, nil
}

func (s *service) Delete(ctx context.Context, companyID uuid.UUID, transactionNo int) error {
	if err := s.writer.DeleteTransaction(ctx, companyID, transactionNo); err != nil {
		return err
	}
	s.audit.Log(ctx, audit.Event{
		CompanyID: companyID,
		EventType: "AUDIT",
		Level:     "INFO",
		Code:      "TX_DELETE_OK",
		Message:   fmt.Sprintf("deleted transaction %d", transactionNo),
	})
	return nil
}

func (s *service) Get(ctx context.Context, companyID uuid.UUID, transactionNo int) (gl.Transaction, error) {
	return s.repo.Transaction(ctx, companyID, transactionNo)
}

func (s *service) List(ctx context.Context, companyID uuid.UUID, page, pageSize int, from, to *time.Time) ([]gl.Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	return s.repo.Transactions(ctx, companyID, page, pageSize, from, to)
}

// auditRejected records unbalanced submissions; other validation failures are
// not audited.
func (s *service) auditRejected(ctx context.Context, in Input, err error) {
	if !errors.Is(err, errs.ErrUnbalanced) {
		return
	}
	s.audit.Log(ctx, audit.Event{
		CompanyID: in.CompanyID,
		EventType: "ERROR",
		Level:     "WARN",
		Code:      "TX_UNBALANCED",
		Message:   fmt.Sprintf("%v for txn %d", err, in.TransactionNo),
	})
}

func distinctCodes(lines []Line) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		code := strings.TrimSpace(ln.AccountCode)
		key := strings.ToLower(code)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, code)
	}
	return out
}
