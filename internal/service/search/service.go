// Package search implements the ledger search: one row per entry joined with
// its transaction and account, with optional filters and stable paging.
package search

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oskarw/glbook/internal/gl"
)

// DefaultPageSize applies when the caller does not specify one.
const DefaultPageSize = 200

// MaxPageSize is the clamp ceiling for page sizes.
const MaxPageSize = 500

// Repo defines the read operations needed by the search.
type Repo interface {
	Accounts(ctx context.Context, companyID uuid.UUID) ([]gl.Account, error)
	Entries(ctx context.Context, companyID uuid.UUID) ([]gl.Entry, error)
	// TransactionHeaders lists all headers for a company without entries.
	TransactionHeaders(ctx context.Context, companyID uuid.UUID) ([]gl.Transaction, error)
}

// Query carries the optional filters. From/To are inclusive; To covers the
// whole calendar day it falls on.
type Query struct {
	CompanyID     uuid.UUID
	Q             string
	AccountCode   string
	TransactionNo *int
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}

// Row is one ledger line. The raw debit/credit columns are surfaced directly,
// unlike the transaction DTO which derives side+amount.
type Row struct {
	Date                   time.Time
	TransactionNo          int
	TransactionDescription string
	AccountCode            string
	AccountName            string
	LineDescription        string
	Debit                  decimal.Decimal
	Credit                 decimal.Decimal
}

// Service exposes the ledger search.
type Service interface {
	Search(ctx context.Context, q Query) ([]Row, error)
}

type service struct {
	repo Repo
}

func New(repo Repo) Service { return &service{repo: repo} }

func (s *service) Search(ctx context.Context, q Query) ([]Row, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	q.Q = strings.TrimSpace(q.Q)
	q.AccountCode = strings.TrimSpace(q.AccountCode)

	accounts, err := s.repo.Accounts(ctx, q.CompanyID)
	if err != nil {
		return nil, err
	}
	headers, err := s.repo.TransactionHeaders(ctx, q.CompanyID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.Entries(ctx, q.CompanyID)
	if err != nil {
		return nil, err
	}

	accByCode := make(map[string]gl.Account, len(accounts))
	for _, a := range accounts {
		accByCode[strings.ToLower(a.Code)] = a
	}
	hdrByNo := make(map[int]gl.Transaction, len(headers))
	for _, h := range headers {
		hdrByNo[h.TransactionNo] = h
	}

	rows := make([]Row, 0)
	for _, e := range entries {
		hdr, ok := hdrByNo[e.TransactionNo]
		if !ok {
			continue
		}
		acc := accByCode[strings.ToLower(e.AccountCode)]
		row := Row{
			Date:                   hdr.Date,
			TransactionNo:          hdr.TransactionNo,
			TransactionDescription: hdr.Description,
			AccountCode:            acc.Code,
			AccountName:            acc.Name,
			LineDescription:        e.Memo,
			Debit:                  e.Debit,
			Credit:                 e.Credit,
		}
		if matches(q, row) {
			rows = append(rows, row)
		}
	}

	// Date desc, then transaction number desc, then account code asc, so
	// paging is stable across requests absent concurrent writes.
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.TransactionNo != b.TransactionNo {
			return a.TransactionNo > b.TransactionNo
		}
		return a.AccountCode < b.AccountCode
	})

	start := (q.Page - 1) * q.PageSize
	if start >= len(rows) {
		return []Row{}, nil
	}
	end := start + q.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], nil
}

func matches(q Query, row Row) bool {
	if q.TransactionNo != nil && row.TransactionNo != *q.TransactionNo {
		return false
	}
	if q.AccountCode != "" && !strings.EqualFold(row.AccountCode, q.AccountCode) {
		return false
	}
	if q.From != nil && row.Date.Before(startOfDay(*q.From)) {
		return false
	}
	if q.To != nil && !row.Date.Before(startOfDay(*q.To).AddDate(0, 0, 1)) {
		return false
	}
	if q.Q != "" {
		if n, err := strconv.Atoi(q.Q); err == nil && n == row.TransactionNo {
			return true
		}
		needle := strings.ToLower(q.Q)
		return strings.Contains(strings.ToLower(row.AccountCode), needle) ||
			strings.Contains(strings.ToLower(row.AccountName), needle) ||
			strings.Contains(strings.ToLower(row.TransactionDescription), needle) ||
			strings.Contains(strings.ToLower(row.LineDescription), needle)
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
