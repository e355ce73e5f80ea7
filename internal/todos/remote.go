// Package todos holds the task model and the GraphQL-backed task store.
package todos

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdxmph/todos-tui/internal/graphql"
)

// ErrNotFound is returned when a mutation matched no task.
var ErrNotFound = errors.New("task not found")

// Doer sends a GraphQL request. *graphql.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req graphql.Request, out any) error
}

// Remote implements Service against a Hasura-style GraphQL endpoint.
type Remote struct {
	gql Doer
}

// NewRemote creates a remote task store on top of a GraphQL client.
func NewRemote(gql Doer) *Remote {
	return &Remote{gql: gql}
}

// List fetches every task. The server is asked for display order and the
// result is re-sorted so the order holds whatever the server did.
func (r *Remote) List(ctx context.Context) ([]Task, error) {
	var out struct {
		Todos []Task `json:"todos"`
	}
	err := r.gql.Do(ctx, graphql.Request{
		Query:         listQuery,
		OperationName: OpList,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	tasks := out.Todos
	if tasks == nil {
		tasks = []Task{}
	}
	Sort(tasks)
	return tasks, nil
}

// SetCompleted updates the completed flag of one task.
func (r *Remote) SetCompleted(ctx context.Context, id int64, completed bool) (bool, error) {
	var out struct {
		UpdateTodos struct {
			Returning []struct {
				Completed bool `json:"completed"`
			} `json:"returning"`
		} `json:"update_todos"`
	}
	err := r.gql.Do(ctx, graphql.Request{
		Query:         setCompletedMutation,
		OperationName: OpSetCompleted,
		Variables:     map[string]any{"id": id, "completed": completed},
	}, &out)
	if err != nil {
		return false, fmt.Errorf("updating task %d: %w", id, err)
	}

	if len(out.UpdateTodos.Returning) == 0 {
		return false, fmt.Errorf("updating task %d: %w", id, ErrNotFound)
	}
	return out.UpdateTodos.Returning[0].Completed, nil
}

// Delete removes one task.
func (r *Remote) Delete(ctx context.Context, id int64) (int, error) {
	var out struct {
		DeleteTodos struct {
			AffectedRows int `json:"affected_rows"`
		} `json:"delete_todos"`
	}
	err := r.gql.Do(ctx, graphql.Request{
		Query:         deleteMutation,
		OperationName: OpDelete,
		Variables:     map[string]any{"id": id},
	}, &out)
	if err != nil {
		return 0, fmt.Errorf("deleting task %d: %w", id, err)
	}
	return out.DeleteTodos.AffectedRows, nil
}

// Add inserts a new task and returns it as stored.
func (r *Remote) Add(ctx context.Context, text string) (Task, error) {
	var out struct {
		InsertTodos struct {
			Returning []Task `json:"returning"`
		} `json:"insert_todos"`
	}
	err := r.gql.Do(ctx, graphql.Request{
		Query:         addMutation,
		OperationName: OpAdd,
		Variables:     map[string]any{"text": text},
	}, &out)
	if err != nil {
		return Task{}, fmt.Errorf("adding task: %w", err)
	}

	if len(out.InsertTodos.Returning) == 0 {
		return Task{}, errors.New("adding task: server returned no task")
	}
	return out.InsertTodos.Returning[0], nil
}
