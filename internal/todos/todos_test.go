package todos_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/todos-tui/internal/graphql"
	"github.com/pdxmph/todos-tui/internal/testutil"
	"github.com/pdxmph/todos-tui/internal/todos"
)

func newRemote(t *testing.T, seed ...todos.Task) (*todos.Remote, *testutil.FakeEndpoint) {
	t.Helper()
	endpoint := testutil.NewFakeEndpoint(t, testutil.NewFakeService(seed...))
	client := graphql.New(endpoint.URL)
	t.Cleanup(func() { _ = client.Close() })
	return todos.NewRemote(client), endpoint
}

// requireDisplayOrder checks incomplete-before-completed and strictly
// descending ids inside each group.
func requireDisplayOrder(t *testing.T, tasks []todos.Task) {
	t.Helper()
	seenCompleted := false
	for i, task := range tasks {
		if task.Completed {
			seenCompleted = true
		} else {
			require.False(t, seenCompleted, "incomplete task %d after a completed one", task.ID)
		}
		if i > 0 && tasks[i-1].Completed == task.Completed {
			require.Greater(t, tasks[i-1].ID, task.ID)
		}
	}
}

func TestSortDisplayOrder(t *testing.T) {
	tasks := []todos.Task{
		{ID: 1, Completed: true},
		{ID: 2},
		{ID: 5, Completed: true},
		{ID: 3},
		{ID: 4},
	}
	todos.Sort(tasks)

	want := []int64{4, 3, 2, 5, 1}
	got := make([]int64, len(tasks))
	for i, task := range tasks {
		got[i] = task.ID
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sorted ids mismatch (-want +got):\n%s", diff)
	}
}

func TestSortRandomCollections(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 50; n++ {
		perm := rng.Perm(30)
		tasks := make([]todos.Task, len(perm))
		for i, id := range perm {
			tasks[i] = todos.Task{ID: int64(id + 1), Completed: rng.Intn(2) == 0}
		}
		todos.Sort(tasks)
		requireDisplayOrder(t, tasks)
	}
}

func TestToggle(t *testing.T) {
	require.True(t, todos.Toggle(todos.Task{}))
	require.False(t, todos.Toggle(todos.Task{Completed: true}))
}

func TestRemoteList(t *testing.T) {
	remote, endpoint := newRemote(t,
		todos.Task{ID: 1, Text: "old", Completed: true},
		todos.Task{ID: 2, Text: "middle"},
		todos.Task{ID: 3, Text: "new"},
	)

	tasks, err := remote.List(context.Background())
	require.NoError(t, err)

	want := []todos.Task{
		{ID: 3, Text: "new"},
		{ID: 2, Text: "middle"},
		{ID: 1, Text: "old", Completed: true},
	}
	if diff := cmp.Diff(want, tasks); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{todos.OpList}, endpoint.Operations())
	require.Contains(t, endpoint.Query(todos.OpList), "order_by: { completed: asc, id: desc }")
}

func TestRemoteListEmpty(t *testing.T) {
	remote, _ := newRemote(t)

	tasks, err := remote.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tasks)
	require.Empty(t, tasks)
}

func TestRemoteListError(t *testing.T) {
	remote, endpoint := newRemote(t)
	endpoint.Store.ListErr = errors.New("database offline")

	_, err := remote.List(context.Background())
	require.Error(t, err)

	var gqlErrs graphql.Errors
	require.True(t, errors.As(err, &gqlErrs))
	require.Contains(t, err.Error(), "database offline")
}

func TestRemoteSetCompletedTwiceRestores(t *testing.T) {
	remote, endpoint := newRemote(t, todos.Task{ID: 9, Text: "walk dog"})
	ctx := context.Background()

	completed, err := remote.SetCompleted(ctx, 9, true)
	require.NoError(t, err)
	require.True(t, completed)

	completed, err = remote.SetCompleted(ctx, 9, false)
	require.NoError(t, err)
	require.False(t, completed)

	task, ok := endpoint.Store.Get(9)
	require.True(t, ok)
	require.False(t, task.Completed)
}

func TestRemoteSetCompletedUnknownID(t *testing.T) {
	remote, _ := newRemote(t)

	_, err := remote.SetCompleted(context.Background(), 404, true)
	require.ErrorIs(t, err, todos.ErrNotFound)
}

func TestRemoteDelete(t *testing.T) {
	remote, _ := newRemote(t,
		todos.Task{ID: 1, Text: "keep"},
		todos.Task{ID: 2, Text: "drop"},
	)
	ctx := context.Background()

	n, err := remote.Delete(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	tasks, err := remote.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []todos.Task{{ID: 1, Text: "keep"}}, tasks)

	n, err = remote.Delete(ctx, 2)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRemoteAdd(t *testing.T) {
	remote, _ := newRemote(t, todos.Task{ID: 7, Text: "existing"})
	ctx := context.Background()

	task, err := remote.Add(ctx, "Buy milk")
	require.NoError(t, err)
	require.Equal(t, todos.Task{ID: 8, Text: "Buy milk"}, task)

	tasks, err := remote.List(ctx)
	require.NoError(t, err)
	require.Equal(t, task, tasks[0])
}

func TestRemoteAddEmptyText(t *testing.T) {
	remote, endpoint := newRemote(t)

	_, err := remote.Add(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []string{""}, endpoint.Store.AddedTexts)
}
