package domain

import "errors"

// Core error taxonomy. Services return these (possibly wrapped); the HTTP
// layer maps them to statuses with errors.Is.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrCycleDetected = errors.New("move would create a cycle")
	ErrNameConflict  = errors.New("name already exists at this level")
	ErrTokenExists   = errors.New("share token already exists")
	ErrFileShared    = errors.New("file already has a share")
)
