package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// gqlRequest mirrors the JSON body a GraphQL client posts.
type gqlRequest struct {
	Query         string          `json:"query"`
	OperationName string          `json:"operationName"`
	Variables     json.RawMessage `json:"variables"`
}

// FakeEndpoint serves the four to-do operations over HTTP, answering in the
// shape a Hasura endpoint uses, and stores tasks in a FakeService.
type FakeEndpoint struct {
	*httptest.Server
	Store *FakeService

	mu         sync.Mutex
	operations []string
	queries    map[string]string
}

// NewFakeEndpoint starts an endpoint that is closed when the test ends.
func NewFakeEndpoint(t *testing.T, store *FakeService) *FakeEndpoint {
	t.Helper()
	e := &FakeEndpoint{Store: store, queries: make(map[string]string)}
	e.Server = httptest.NewServer(http.HandlerFunc(e.serve))
	t.Cleanup(e.Server.Close)
	return e
}

// Operations returns the operation names received, in arrival order.
func (e *FakeEndpoint) Operations() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.operations...)
}

// Query returns the last document received for an operation name.
func (e *FakeEndpoint) Query(operation string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queries[operation]
}

func (e *FakeEndpoint) serve(w http.ResponseWriter, r *http.Request) {
	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []map[string]any{{"message": err.Error()}},
		})
		return
	}

	e.mu.Lock()
	e.operations = append(e.operations, req.OperationName)
	e.queries[req.OperationName] = req.Query
	e.mu.Unlock()

	data, err := e.dispatch(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"errors": []map[string]any{{"message": err.Error()}},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (e *FakeEndpoint) dispatch(ctx context.Context, req gqlRequest) (any, error) {
	var vars struct {
		ID        int64  `json:"id"`
		Completed bool   `json:"completed"`
		Text      string `json:"text"`
	}
	if len(req.Variables) > 0 {
		if err := json.Unmarshal(req.Variables, &vars); err != nil {
			return nil, err
		}
	}

	switch req.OperationName {
	case "getTodo":
		tasks, err := e.Store.List(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"todos": tasks}, nil

	case "updateTodo":
		completed, err := e.Store.SetCompleted(ctx, vars.ID, vars.Completed)
		if err != nil {
			// Hasura reports no match as an empty "returning" list.
			return map[string]any{"update_todos": map[string]any{"returning": []any{}}}, nil
		}
		return map[string]any{"update_todos": map[string]any{
			"returning": []map[string]any{{"completed": completed}},
		}}, nil

	case "deleteTodo":
		n, err := e.Store.Delete(ctx, vars.ID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"delete_todos": map[string]any{"affected_rows": n}}, nil

	case "newTodo":
		t, err := e.Store.Add(ctx, vars.Text)
		if err != nil {
			return nil, err
		}
		return map[string]any{"insert_todos": map[string]any{
			"returning": []any{t},
		}}, nil
	}

	return nil, &unknownOperationError{name: req.OperationName}
}

type unknownOperationError struct {
	name string
}

func (e *unknownOperationError) Error() string {
	return "unknown operation: " + e.name
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
