// Package command wraps single persistence calls behind an execute/undo
// contract. A command captures the id generated by its insert so a later undo
// can issue the matching delete. History is in memory only and is lost on
// restart.
package command

import "context"

// UndoStatus disambiguates the outcomes of Undo: a command that never
// executed successfully is not the same thing as a delete that failed.
type UndoStatus int

const (
	// UndoNotExecuted means there is nothing to undo: Undo was called before
	// a successful Execute, or Execute never captured an id.
	UndoNotExecuted UndoStatus = iota
	// UndoFailed means the compensating delete was attempted and errored.
	UndoFailed
	// UndoDone means the compensating delete succeeded.
	UndoDone
)

func (s UndoStatus) String() string {
	switch s {
	case UndoNotExecuted:
		return "not_executed"
	case UndoFailed:
		return "failed"
	case UndoDone:
		return "done"
	default:
		return "unknown"
	}
}

// Command is a reversible persistence operation.
type Command interface {
	// Execute performs the wrapped insert, capturing the generated id on
	// success.
	Execute(ctx context.Context) error
	// Undo deletes the record inserted by Execute. The error is non-nil only
	// when the status is UndoFailed.
	Undo(ctx context.Context) (UndoStatus, error)
}
