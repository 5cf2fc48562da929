package v1

import "github.com/oskarw/glbook/internal/storage/memory"

// Compile-time interface assertions for the in-memory Store against the API's
// composed Store interface.
var _ Store = (*memory.Store)(nil)
