// Package account implements the chart-of-accounts rules: an immutable code
// as the business key, editable name/type, and restrict-on-delete while
// entries reference the account.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/oskarw/glbook/internal/audit"
	"github.com/oskarw/glbook/internal/errs"
	"github.com/oskarw/glbook/internal/gl"
)

// Repo defines the read operations needed by the service.
type Repo interface {
	// Account resolves an account by company and code (case-insensitive),
	// or errs.ErrNotFound.
	Account(ctx context.Context, companyID uuid.UUID, code string) (gl.Account, error)
	// ListAccounts lists a company's chart filtered by an optional code/name
	// substring, code asc, with the unpaged total.
	ListAccounts(ctx context.Context, companyID uuid.UUID, q string, page, pageSize int) ([]gl.Account, int, error)
}

// Writer defines the write operations needed by the service.
type Writer interface {
	CreateAccount(ctx context.Context, a gl.Account) (gl.Account, error)
	// UpdateAccount persists name/type changes. The code never changes.
	UpdateAccount(ctx context.Context, a gl.Account) (gl.Account, error)
	// DeleteAccount removes the account. Missing accounts are a no-op;
	// accounts still referenced by entries fail with errs.ErrConflict.
	DeleteAccount(ctx context.Context, companyID uuid.UUID, code string) error
}

// Service exposes chart-of-accounts CRUD.
type Service interface {
	Create(ctx context.Context, a gl.Account) (gl.Account, error)
	Get(ctx context.Context, companyID uuid.UUID, code string) (gl.Account, error)
	List(ctx context.Context, companyID uuid.UUID, q string, page, pageSize int) ([]gl.Account, int, error)
	// Update changes name and type for the account identified by code.
	Update(ctx context.Context, companyID uuid.UUID, code string, name string, typ gl.AccountType) (gl.Account, error)
	Delete(ctx context.Context, companyID uuid.UUID, code string) error
}

type service struct {
	repo   Repo
	writer Writer
	audit  audit.Logger
}

func New(repo Repo, writer Writer, aud audit.Logger) Service {
	return &service{repo: repo, writer: writer, audit: aud}
}

func validateFields(code, name string, typ gl.AccountType) error {
	if code == "" {
		return fmt.Errorf("code is required: %w", errs.ErrInvalid)
	}
	if name == "" {
		return fmt.Errorf("name is required: %w", errs.ErrInvalid)
	}
	if !typ.Valid() {
		return fmt.Errorf("account type %q is not recognised: %w", typ, errs.ErrInvalid)
	}
	return nil
}

func (s *service) Create(ctx context.Context, a gl.Account) (gl.Account, error) {
	a.Code = strings.TrimSpace(a.Code)
	a.Name = strings.TrimSpace(a.Name)
	if err := validateFields(a.Code, a.Name, a.Type); err != nil {
		return gl.Account{}, err
	}
	if _, err := s.repo.Account(ctx, a.CompanyID, a.Code); err == nil {
		s.audit.Log(ctx, audit.Event{
			CompanyID: a.CompanyID,
			EventType: "ERROR",
			Level:     "WARN",
			Code:      "ACCOUNTS_CODE_DUP",
			Message:   fmt.Sprintf("account code %q already exists", a.Code),
		})
		return gl.Account{}, errs.ErrDuplicateAccountCode
	} else if !isNotFound(err) {
		return gl.Account{}, err
	}

	a.ID = uuid.New()
	created, err := s.writer.CreateAccount(ctx, a)
	if err != nil {
		return gl.Account{}, err
	}
	s.audit.Log(ctx, audit.Event{
		CompanyID: a.CompanyID,
		EventType: "AUDIT",
		Level:     "INFO",
		Code:      "ACCOUNTS_CREATE_OK",
		Message:   fmt.Sprintf("created account %s", created.Code),
	})
	return created, nil
}

func (s *service) Get(ctx context.Context, companyID uuid.UUID, code string) (gl.Account, error) {
	return s.repo.Account(ctx, companyID, strings.TrimSpace(code))
}

func (s *service) List(ctx context.Context, companyID uuid.UUID, q string, page, pageSize int) ([]gl.Account, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	return s.repo.ListAccounts(ctx, companyID, strings.TrimSpace(q), page, pageSize)
}

func (s *service) Update(ctx context.Context, companyID uuid.UUID, code, name string, typ gl.AccountType) (gl.Account, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if err := validateFields(code, name, typ); err != nil {
		return gl.Account{}, err
	}
	a, err := s.repo.Account(ctx, companyID, code)
	if err != nil {
		return gl.Account{}, err
	}
	a.Name = name
	a.Type = typ
	updated, err := s.writer.UpdateAccount(ctx, a)
	if err != nil {
		return gl.Account{}, err
	}
	s.audit.Log(ctx, audit.Event{
		CompanyID: companyID,
		EventType: "AUDIT",
		Level:     "INFO",
		Code:      "ACCOUNTS_UPDATE_OK",
		Message:   fmt.Sprintf("updated account %s", a.Code),
	})
	return updated, nil
}

func (s *service) Delete(ctx context.Context, companyID uuid.UUID, code string) error {
	code = strings.TrimSpace(code)
	if err := s.writer.DeleteAccount(ctx, companyID, code); err != nil {
		return err
	}
	s.audit.Log(ctx, audit.Event{
		CompanyID: companyID,
		EventType: "AUDIT",
		Level:     "INFO",
		Code:      "ACCOUNTS_DELETE_OK",
		Message:   fmt.Sprintf("deleted account %s", code),
	})
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, errs.ErrNotFound)
}
