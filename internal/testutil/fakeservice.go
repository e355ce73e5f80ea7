// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdxmph/todos-tui/internal/todos"
)

// FakeService is an in-memory implementation of todos.Service for testing.
// It assigns ids the way the remote store does: increasing, never reused.
type FakeService struct {
	mu     sync.Mutex
	tasks  map[int64]todos.Task
	nextID int64

	// Call counters
	ListCalls         int
	SetCompletedCalls int
	DeleteCalls       int
	AddCalls          int
	AddedTexts        []string

	// Error injection for testing
	ListErr         error
	SetCompletedErr error
	DeleteErr       error
	AddErr          error
}

// NewFakeService creates a FakeService holding the given tasks.
func NewFakeService(seed ...todos.Task) *FakeService {
	f := &FakeService{
		tasks:  make(map[int64]todos.Task),
		nextID: 1,
	}
	for _, t := range seed {
		f.tasks[t.ID] = t
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
	}
	return f
}

// Get returns a stored task by id.
func (f *FakeService) Get(id int64) (todos.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	return t, ok
}

// List implements todos.Service.
func (f *FakeService) List(ctx context.Context) ([]todos.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	result := make([]todos.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		result = append(result, t)
	}
	todos.Sort(result)
	return result, nil
}

// SetCompleted implements todos.Service.
func (f *FakeService) SetCompleted(ctx context.Context, id int64, completed bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetCompletedCalls++
	if f.SetCompletedErr != nil {
		return false, f.SetCompletedErr
	}

	t, ok := f.tasks[id]
	if !ok {
		return false, fmt.Errorf("updating task %d: %w", id, todos.ErrNotFound)
	}
	t.Completed = completed
	f.tasks[id] = t
	return t.Completed, nil
}

// Delete implements todos.Service.
func (f *FakeService) Delete(ctx context.Context, id int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteErr != nil {
		return 0, f.DeleteErr
	}

	if _, ok := f.tasks[id]; !ok {
		return 0, nil
	}
	delete(f.tasks, id)
	return 1, nil
}

// Add implements todos.Service.
func (f *FakeService) Add(ctx context.Context, text string) (todos.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls++
	f.AddedTexts = append(f.AddedTexts, text)
	if f.AddErr != nil {
		return todos.Task{}, f.AddErr
	}

	t := todos.Task{ID: f.nextID, Text: text}
	f.nextID++
	f.tasks[t.ID] = t
	return t, nil
}
