package model

import "github.com/m-mizutani/goerr/v2"

// Error tags classify storage failures by how callers should react.
// Tagged errors are non-fatal for retrieval paths: source searches absorb
// them into empty results. Config errors fail fast instead.
var (
	ErrTagStorageUnavailable = goerr.NewTag("storage_unavailable")
	ErrTagStorageQuery       = goerr.NewTag("storage_query")
	ErrTagConfig             = goerr.NewTag("config")
)

var (
	ErrInvalidRole     = goerr.New("invalid role")
	ErrInvalidMode     = goerr.New("invalid mode")
	ErrInvalidSeverity = goerr.New("invalid severity")
	ErrInvalidUrgency  = goerr.New("invalid urgency")
)
