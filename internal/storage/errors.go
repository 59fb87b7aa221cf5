package storage

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/checkbook/internal/common"
)

// FailureKind classifies why a storage operation failed.
type FailureKind int

const (
	// KindUnknown covers failures that fit no other kind.
	KindUnknown FailureKind = iota
	// KindDuplicate means a uniqueness rule rejected the write.
	KindDuplicate
	// KindStorageUnavailable means the database file or engine could not serve the request.
	KindStorageUnavailable
	// KindMissingReference means a strict-mode write named an account or type that does not exist.
	KindMissingReference
)

func (k FailureKind) String() string {
	switch k {
	case KindDuplicate:
		return "duplicate"
	case KindStorageUnavailable:
		return "storage_unavailable"
	case KindMissingReference:
		return "missing_reference"
	default:
		return "unknown"
	}
}

// Reference errors returned in strict mode.
var (
	ErrUnknownAccount         = fmt.Errorf("%w: account", common.ErrMissingReference)
	ErrUnknownTransactionType = fmt.Errorf("%w: transaction type", common.ErrMissingReference)
)

var errClosed = errors.New("database is closed")

// Error is returned by every failing storage operation.
type Error struct {
	Err  error
	Op   string
	Kind FailureKind
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers match the kind through the common sentinel errors.
func (e *Error) Is(target error) bool {
	switch target {
	case common.ErrDuplicateEntry:
		return e.Kind == KindDuplicate
	case common.ErrStorageUnavailable:
		return e.Kind == KindStorageUnavailable
	case common.ErrMissingReference:
		return e.Kind == KindMissingReference
	}
	return false
}

// newError wraps err for op, classifying it from the SQLite result code.
// An err that is already an *Error is returned unchanged.
func newError(op string, err error) error {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return err
	}
	return &Error{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) FailureKind {
	if errors.Is(err, errClosed) {
		return KindStorageUnavailable
	}
	if errors.Is(err, common.ErrDuplicateEntry) {
		return KindDuplicate
	}
	if errors.Is(err, common.ErrMissingReference) {
		return KindMissingReference
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return KindUnknown
	}

	if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return KindDuplicate
	}

	switch sqliteErr.Code {
	case sqlite3.ErrCantOpen,
		sqlite3.ErrIoErr,
		sqlite3.ErrBusy,
		sqlite3.ErrLocked,
		sqlite3.ErrReadonly,
		sqlite3.ErrFull,
		sqlite3.ErrCorrupt,
		sqlite3.ErrNotADB,
		sqlite3.ErrPerm:
		return KindStorageUnavailable
	}
	return KindUnknown
}

// KindOf returns the failure kind carried by err, or KindUnknown.
func KindOf(err error) FailureKind {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}
	return classify(err)
}

// Result is the outcome of a write, for callers that want a success flag
// alongside the reason for a failure.
type Result struct {
	Err  error
	Kind FailureKind
	OK   bool
}

// ResultOf converts the error returned by a storage operation into a Result.
func ResultOf(err error) Result {
	if err == nil {
		return Result{OK: true}
	}
	return Result{Err: err, Kind: KindOf(err)}
}
