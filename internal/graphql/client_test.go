package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler func(t *testing.T, req Request) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		status, body := handler(t, req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDoDecodesData(t *testing.T) {
	srv := newServer(t, func(t *testing.T, req Request) (int, string) {
		require.Equal(t, "getThing", req.OperationName)
		require.Equal(t, float64(7), req.Variables["id"])
		return http.StatusOK, `{"data":{"thing":{"name":"seven"}}}`
	})

	c := New(srv.URL)
	defer c.Close()

	var out struct {
		Thing struct {
			Name string `json:"name"`
		} `json:"thing"`
	}
	err := c.Do(context.Background(), Request{
		Query:         "query getThing($id: Int) { thing(id: $id) { name } }",
		OperationName: "getThing",
		Variables:     map[string]any{"id": 7},
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "seven", out.Thing.Name)
}

func TestDoReturnsGraphQLErrors(t *testing.T) {
	srv := newServer(t, func(t *testing.T, req Request) (int, string) {
		return http.StatusOK, `{"errors":[{"message":"field not found"},{"message":"bad input"}]}`
	})

	c := New(srv.URL)
	defer c.Close()

	err := c.Do(context.Background(), Request{Query: "{ x }"}, nil)
	require.Error(t, err)

	var gqlErrs Errors
	require.True(t, errors.As(err, &gqlErrs))
	require.Len(t, gqlErrs, 2)
	require.Equal(t, "field not found; bad input", err.Error())
}

func TestDoReturnsHTTPError(t *testing.T) {
	srv := newServer(t, func(t *testing.T, req Request) (int, string) {
		return http.StatusBadGateway, `{}`
	})

	c := New(srv.URL)
	defer c.Close()

	err := c.Do(context.Background(), Request{Query: "{ x }"}, nil)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestDoPrefersErrorBodyOnHTTPFailure(t *testing.T) {
	srv := newServer(t, func(t *testing.T, req Request) (int, string) {
		return http.StatusBadRequest, `{"errors":[{"message":"parse failed"}]}`
	})

	c := New(srv.URL)
	defer c.Close()

	err := c.Do(context.Background(), Request{Query: "{"}, nil)
	require.EqualError(t, err, "parse failed")
}

func TestDoTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	defer c.Close()

	err := c.Do(context.Background(), Request{Query: "{ x }", OperationName: "x"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sending x")
}

func TestWithHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get("X-Hasura-Admin-Secret"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHeaders(map[string]string{"X-Hasura-Admin-Secret": "secret"}))
	defer c.Close()

	require.NoError(t, c.Do(context.Background(), Request{Query: "{ x }"}, nil))
}

func rawServer(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDoRejectsNonJSONContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"json body as text", "text/plain; charset=utf-8", `{"data":{"todos":[]}}`},
		{"html page", "text/html; charset=utf-8", `<html><body>Sign in to continue</body></html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(rawServer(t, tt.contentType, tt.body).URL)
			defer c.Close()

			var out struct {
				Todos []any `json:"todos"`
			}
			err := c.Do(context.Background(), Request{Query: "{ todos { id } }", OperationName: "getTodo"}, &out)
			require.Error(t, err)

			var ctErr *ContentTypeError
			require.True(t, errors.As(err, &ctErr), "got %v", err)
			require.Equal(t, http.StatusOK, ctErr.StatusCode)
			require.Equal(t, tt.contentType, ctErr.ContentType)
		})
	}
}

func TestDoAcceptsJSONContentTypeWithCharset(t *testing.T) {
	c := New(rawServer(t, "application/json; charset=utf-8", `{"data":{"n":3}}`).URL)
	defer c.Close()

	var out struct {
		N int `json:"n"`
	}
	require.NoError(t, c.Do(context.Background(), Request{Query: "{ n }"}, &out))
	require.Equal(t, 3, out.N)
}

func TestDoMissingDataIsAnError(t *testing.T) {
	for _, body := range []string{`{}`, `{"data":null}`} {
		t.Run(body, func(t *testing.T) {
			srv := newServer(t, func(t *testing.T, req Request) (int, string) {
				return http.StatusOK, body
			})
			c := New(srv.URL)
			defer c.Close()

			var out struct{}
			err := c.Do(context.Background(), Request{Query: "{ x }", OperationName: "x"}, &out)
			require.ErrorIs(t, err, ErrNoData)

			require.NoError(t, c.Do(context.Background(), Request{Query: "{ x }"}, nil), "no result requested")
		})
	}
}
