package board

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"trustbyte/domain"
)

// DragEnd describes where a drag gesture finished. A nil Destination means
// the card was dropped outside any column.
type DragEnd struct {
	TaskID      primitive.ObjectID
	Source      domain.Status
	Destination *domain.Status
}

// Syncer persists a task mutation on the backend. client.Client satisfies it.
type Syncer interface {
	UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error)
}

// Notifier surfaces the outcome of a sync to the user, the toast analog.
type Notifier interface {
	Success(title, detail string)
	Failure(title, detail string)
}

// Board binds the store to a syncer: status transitions are applied to the
// store optimistically and persisted in the background.
type Board struct {
	store  *Store
	sync   Syncer
	notify Notifier
	wg     sync.WaitGroup
}

// NewBoard creates a board over the given store. Syncer and Notifier may be
// nil, which makes transitions purely local.
func NewBoard(store *Store, syncer Syncer, notifier Notifier) *Board {
	if store == nil {
		panic("board.NewBoard: nil store")
	}
	return &Board{store: store, sync: syncer, notify: notifier}
}

// Store exposes the underlying task store.
func (b *Board) Store() *Store {
	return b.store
}

// DragTo handles a drag-end event. Drops outside any column and drops back
// into the source column change nothing. It returns the optimistically
// updated task and whether a transition fired.
func (b *Board) DragTo(ctx context.Context, drop DragEnd) (domain.Task, bool) {
	if drop.Destination == nil {
		return domain.Task{}, false
	}
	if *drop.Destination == drop.Source {
		return domain.Task{}, false
	}
	task, ok := b.store.TaskByID(drop.TaskID)
	if !ok {
		return domain.Task{}, false
	}
	return b.applyTransition(ctx, task, *drop.Destination)
}

// SetStatus handles an explicit status selection from a menu or dropdown.
// Re-selecting the current status is a no-op and issues no sync call.
func (b *Board) SetStatus(ctx context.Context, task domain.Task, status domain.Status) (domain.Task, bool) {
	if task.Status == status {
		return task, false
	}
	return b.applyTransition(ctx, task, status)
}

// applyTransition updates the store first, so the UI reflects the new column
// before any network confirmation, then dispatches the sync asynchronously.
func (b *Board) applyTransition(ctx context.Context, task domain.Task, status domain.Status) (domain.Task, bool) {
	updated := task
	updated.Status = status
	b.store.UpdateTask(updated)
	b.dispatch(ctx, updated)
	return updated, true
}

// dispatch persists the updated task in the background. Exactly one attempt
// is made; on failure the optimistic update stays in place and only a
// notification is raised, leaving reconciliation to the next full refetch.
func (b *Board) dispatch(ctx context.Context, task domain.Task) {
	if b.sync == nil {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if _, err := b.sync.UpdateTask(ctx, task); err != nil {
			if b.notify != nil {
				b.notify.Failure("Error", "Failed to update task status")
			}
			return
		}
		if b.notify != nil {
			b.notify.Success("Task Updated", "Status changed to "+string(task.Status))
		}
	}()
}

// Wait blocks until all in-flight sync calls have completed. Sync calls
// cannot be cancelled individually; cancel the context passed to the
// transition instead.
func (b *Board) Wait() {
	b.wg.Wait()
}
