package graph

import "github.com/pkg/errors"

var (
	ErrInvalidConfig   = errors.New("invalid graph configuration")
	ErrNilReads        = errors.New("nil read source")
	ErrAlreadyBuilt    = errors.New("graph already built")
	ErrBuildIncomplete = errors.New("build phase has not completed")
	ErrLinksGenerated  = errors.New("links already generated")

	// ErrIdentityDesync means a canonical value resolved to a node holding a
	// different value. The index is corrupt and the build cannot continue.
	ErrIdentityDesync = errors.New("k-mer identity desync")
)
