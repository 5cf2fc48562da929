package v1

import (
	"context"

	"github.com/oskarw/glbook/internal/service/account"
	"github.com/oskarw/glbook/internal/service/company"
	"github.com/oskarw/glbook/internal/service/posting"
	"github.com/oskarw/glbook/internal/service/report"
	"github.com/oskarw/glbook/internal/service/search"
)

// Store composes every repository and writer the API's services need. It is
// a convenience union satisfied by both the in-memory and postgres stores.
type Store interface {
	posting.Repo
	posting.Writer
	account.Repo
	account.Writer
	company.Repo
	company.Writer
	report.Repo
	search.Repo
}

// ReadyChecker is optionally implemented by stores to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
