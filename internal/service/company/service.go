// Package company implements tenant rules: unique names, and deletion blocked
// while the company still owns accounts or transactions.
package company

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/oskarw/glbook/internal/audit"
	"github.com/oskarw/glbook/internal/errs"
	"github.com/oskarw/glbook/internal/gl"
)

// Repo defines the read operations needed by the service.
type Repo interface {
	Company(ctx context.Context, companyID uuid.UUID) (gl.Company, error)
	// Companies lists tenants filtered by an optional name substring, name
	// asc, with the unpaged total.
	Companies(ctx context.Context, q string, page, pageSize int) ([]gl.Company, int, error)
	// CompanyNameTaken reports whether a tenant with the name exists,
	// case-insensitively, excluding the given ID (uuid.Nil to exclude none).
	CompanyNameTaken(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	// CompanyOwnsData reports whether the company still owns accounts or
	// transactions.
	CompanyOwnsData(ctx context.Context, companyID uuid.UUID) (bool, error)
}

// Writer defines the write operations needed by the service.
type Writer interface {
	CreateCompany(ctx context.Context, c gl.Company) (gl.Company, error)
	UpdateCompany(ctx context.Context, c gl.Company) (gl.Company, error)
	// DeleteCompany removes the tenant row. Missing companies are a no-op.
	DeleteCompany(ctx context.Context, companyID uuid.UUID) error
}

// Service exposes tenant CRUD.
type Service interface {
	Create(ctx context.Context, name string) (gl.Company, error)
	Get(ctx context.Context, companyID uuid.UUID) (gl.Company, error)
	List(ctx context.Context, q string, page, pageSize int) ([]gl.Company, int, error)
	Update(ctx context.Context, companyID uuid.UUID, name string) (gl.Company, error)
	Delete(ctx context.Context, companyID uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
	audit  audit.Logger
}

func New(repo Repo, writer Writer, aud audit.Logger) Service {
	return &service{repo: repo, writer: writer, audit: aud}
}

func (s *service) Create(ctx context.Context, name string) (gl.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return gl.Company{}, fmt.Errorf("name is required: %w", errs.ErrInvalid)
	}
	taken, err := s.repo.CompanyNameTaken(ctx, name, uuid.Nil)
	if err != nil {
		return gl.Company{}, err
	}
	if taken {
		return gl.Company{}, errs.ErrDuplicateCompanyName
	}
	created, err := s.writer.CreateCompany(ctx, gl.Company{ID: uuid.New(), Name: name})
	if err != nil {
		return gl.Company{}, err
	}
	s.audit.Log(ctx, audit.Event{
		CompanyID: created.ID,
		EventType: "AUDIT",
		Level:     "INFO",
		Code:      "COMPANY_CREATE_OK",
		Message:   fmt.Sprintf("created company %q", created.Name),
	})
	return created, nil
}

func (s *service) Get(ctx context.Context, companyID uuid.UUID) (gl.Company, error) {
	return s.repo.Company(ctx, companyID)
}

func (s *service) List(ctx context.Context, q string, page, pageSize int) ([]gl.Company, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	return s.repo.Companies(ctx, strings.TrimSpace(q), page, pageSize)
}

func (s *service) Update(ctx context.Context, companyID uuid.UUID, name string) (gl.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return gl.Company{}, fmt.Errorf("name is required: %w", errs.ErrInvalid)
	}
	c, err := s.repo.Company(ctx, companyID)
	if err != nil {
		return gl.Company{}, err
	}
	taken, err := s.repo.CompanyNameTaken(ctx, name, companyID)
	if err != nil {
		return gl.Company{}, err
	}
	if taken {
		return gl.Company{}, errs.ErrDuplicateCompanyName
	}
	c.Name = name
	updated, err := s.writer.UpdateCompany(ctx, c)
	if err != nil {
		return gl.Company{}, err
	}
	s.audit.Log(ctx, audit.Event{
		CompanyID: companyID,
		EventType: "AUDIT",
		Level:     "INFO",
		Code:      "COMPANY_UPDATE_OK",
		Message:   fmt.Sprintf("renamed company to %q", name),
	})
	return updated, nil
}

func (s *service) Delete(ctx context.Context, companyID uuid.UUID) error {
	owns, err := s.repo.CompanyOwnsData(ctx, companyID)
	if err != nil {
		return err
	}
	if owns {
		s.audit.Log(ctx, audit.Event{
			CompanyID: companyID,
			EventType: "ERROR",
			Level:     "WARN",
			Code:      "COMPANY_DELETE_BLOCKED",
			Message:   "company still owns accounts or transactions",
		})
		return fmt.Errorf("company has accounts or transactions; delete them first: %w", errs.ErrConflict)
	}
	if err := s.writer.DeleteCompany(ctx, companyID); err != nil {
		return err
	}
	s.audit.Log(ctx, audit.Event{
		CompanyID: companyID,
		EventType: "AUDIT",
		Level:     "INFO",
		Code:      "COMPANY_DELETE_OK",
		Message:   "deleted company",
	})
	return nil
}
