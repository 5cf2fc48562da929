package memory

import (
	"github.com/oskarw/glbook/internal/audit"
	"github.com/oskarw/glbook/internal/service/account"
	"github.com/oskarw/glbook/internal/service/company"
	"github.com/oskarw/glbook/internal/service/posting"
	"github.com/oskarw/glbook/internal/service/report"
	"github.com/oskarw/glbook/internal/service/search"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	// Service layer repos and writers
	_ posting.Repo   = (*Store)(nil)
	_ posting.Writer = (*Store)(nil)
	_ account.Repo   = (*Store)(nil)
	_ account.Writer = (*Store)(nil)
	_ company.Repo   = (*Store)(nil)
	_ company.Writer = (*Store)(nil)
	_ report.Repo    = (*Store)(nil)
	_ search.Repo    = (*Store)(nil)
	// Audit trail
	_ audit.Sink = (*Store)(nil)
)
