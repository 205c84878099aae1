package command

import (
	"context"
	"sync"
)

// Invoker runs commands and keeps a LIFO history of the ones that executed
// successfully, so the most recent operation can be reverted.
type Invoker struct {
	mu      sync.Mutex
	history []Command
}

// NewInvoker returns an empty invoker.
func NewInvoker() *Invoker {
	return &Invoker{}
}

// Run executes the command and, on success, pushes it onto the history.
func (i *Invoker) Run(ctx context.Context, cmd Command) error {
	if err := cmd.Execute(ctx); err != nil {
		return err
	}
	i.mu.Lock()
	i.history = append(i.history, cmd)
	i.mu.Unlock()
	return nil
}

// UndoLast undoes the most recently executed command. With an empty history
// it reports UndoNotExecuted. A command whose undo fails stays on the history
// so the revert can be retried.
func (i *Invoker) UndoLast(ctx context.Context) (UndoStatus, error) {
	i.mu.Lock()
	if len(i.history) == 0 {
		i.mu.Unlock()
		return UndoNotExecuted, nil
	}
	cmd := i.history[len(i.history)-1]
	i.mu.Unlock()

	status, err := cmd.Undo(ctx)
	if status == UndoDone {
		i.mu.Lock()
		i.history = i.history[:len(i.history)-1]
		i.mu.Unlock()
	}
	return status, err
}

// Depth returns the number of undoable commands.
func (i *Invoker) Depth() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.history)
}
