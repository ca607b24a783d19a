package bulkimport

import "errors"

var (
	ErrJobNotFound     = errors.New("import job not found")
	ErrStatusConflict  = errors.New("import job status changed concurrently")
	ErrAccountNotFound = errors.New("corporate account not found")
	ErrRateLimited     = errors.New("rate limited by upstream")
	ErrLockNotAcquired = errors.New("account lock not acquired")
	ErrProgramNotFound = errors.New("program not found")
	ErrGroupNotFound   = errors.New("group not found")
)
