package client

import (
	"github.com/notelinkapp/notelink/internal/common"
)

// The sentinels alias the shared taxonomy so errors.Is matches either name.
var (
	ErrUnavailable  = common.ErrTransport
	ErrUnauthorized = common.ErrUnauthorized
	ErrNotFound     = common.ErrNotFound
	ErrConflict     = common.ErrConflict
)
