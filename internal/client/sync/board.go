// Package sync keeps the client task cache reconciled with the gateway:
// optimistic local mutations, authoritative server responses.
package sync

import "github.com/BuzzLyutic/taskboard/internal/model"

type eventKind int

const (
	evLoaded eventKind = iota
	evCreated
	evUpdated
	evUpdateFailed
	evDeleted
	evMoveRequested
	evMoveSettled
)

// event is one cache transition input. Which fields matter depends on kind:
//
//	loaded        — tasks (full replacement)
//	created       — task (server-assigned)
//	updated       — task (server shape), or gone when the server said 404
//	updateFailed  — id + prev (rollback to last-confirmed), or gone
//	deleted       — id
//	moveRequested — id + status (optimistic lane change)
//	moveSettled   — task (server shape), or gone
type event struct {
	kind   eventKind
	tasks  []model.Task
	task   model.Task
	id     string
	status model.Status
	prev   model.Task
	gone   bool
}

// board is the client task cache: arrival order plus id lookup.
type board struct {
	order []string
	items map[string]model.Task
}

func emptyBoard() board {
	return board{items: make(map[string]model.Task)}
}

// apply is a pure transition: the receiver is not mutated, the returned
// board reflects the event. Unknown ids are ignored, so stale events
// arriving after a reload cannot corrupt the cache.
func (b board) apply(e event) board {
	switch e.kind {
	case evLoaded:
		next := emptyBoard()
		for _, t := range e.tasks {
			if _, dup := next.items[t.ID]; dup {
				continue
			}
			next.order = append(next.order, t.ID)
			next.items[t.ID] = t
		}
		return next

	case evCreated:
		return b.insert(e.task)

	case evUpdated, evMoveSettled:
		if e.gone {
			return b.remove(e.task.ID)
		}
		return b.replace(e.task)

	case evUpdateFailed:
		if e.gone {
			return b.remove(e.id)
		}
		return b.replace(e.prev)

	case evDeleted:
		return b.remove(e.id)

	case evMoveRequested:
		t, ok := b.items[e.id]
		if !ok {
			return b
		}
		t.Status = e.status
		return b.replace(t)
	}
	return b
}

func (b board) insert(t model.Task) board {
	if _, exists := b.items[t.ID]; exists {
		return b.replace(t)
	}
	next := b.clone()
	next.order = append(next.order, t.ID)
	next.items[t.ID] = t
	return next
}

func (b board) replace(t model.Task) board {
	if _, exists := b.items[t.ID]; !exists {
		return b
	}
	next := b.clone()
	next.items[t.ID] = t
	return next
}

func (b board) remove(id string) board {
	if _, exists := b.items[id]; !exists {
		return b
	}
	next := emptyBoard()
	for _, existing := range b.order {
		if existing == id {
			continue
		}
		next.order = append(next.order, existing)
		next.items[existing] = b.items[existing]
	}
	return next
}

func (b board) clone() board {
	next := board{
		order: make([]string, len(b.order)),
		items: make(map[string]model.Task, len(b.items)),
	}
	copy(next.order, b.order)
	for id, t := range b.items {
		next.items[id] = t
	}
	return next
}

func (b board) snapshot() []model.Task {
	tasks := make([]model.Task, 0, len(b.order))
	for _, id := range b.order {
		tasks = append(tasks, b.items[id])
	}
	return tasks
}

func (b board) lanes() map[model.Status][]model.Task {
	lanes := map[model.Status][]model.Task{
		model.StatusPending:    {},
		model.StatusInProgress: {},
		model.StatusCompleted:  {},
	}
	for _, id := range b.order {
		t := b.items[id]
		lanes[t.Status] = append(lanes[t.Status], t)
	}
	return lanes
}
