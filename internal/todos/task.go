package todos

import (
	"context"
	"sort"
)

// Task is a single to-do item held by the remote store.
type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Service defines the operations the client performs against a task store.
// The remote store assigns ids; callers never invent them.
type Service interface {
	// List returns every task in display order.
	List(ctx context.Context) ([]Task, error)

	// SetCompleted sets the completed flag of the task with the given id
	// and returns the stored value.
	SetCompleted(ctx context.Context, id int64, completed bool) (bool, error)

	// Delete removes the task with the given id and returns the number of
	// affected rows.
	Delete(ctx context.Context, id int64) (int, error)

	// Add creates a task with the given text. Empty text is not rejected.
	Add(ctx context.Context, text string) (Task, error)
}

// Less reports whether a is displayed before b: incomplete tasks first,
// then higher (newer) ids first within each group.
func Less(a, b Task) bool {
	if a.Completed != b.Completed {
		return !a.Completed
	}
	return a.ID > b.ID
}

// Sort orders tasks for display in place.
func Sort(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return Less(tasks[i], tasks[j])
	})
}

// Toggle returns the completed value a click on the task requests.
func Toggle(t Task) bool {
	return !t.Completed
}
