package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSourceUnavailable   = errors.New("reconciliation source unavailable")
	ErrMalformedSource     = errors.New("malformed reconciliation source")
	ErrNoAcceptedLines     = errors.New("no cart entry matched a catalog product")
	ErrReconcileInProgress = errors.New("reconciliation already in progress")
	ErrExportFailed        = errors.New("order export failed")
	ErrDuplicateOrderGroup = errors.New("order group already exists")
	ErrLockHeld            = errors.New("lock is held by another owner")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// StorageError wraps a failure of the backing store for operation Op.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
