package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course_miniapp/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenStore) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		BaseURL: server.URL + "/api/",
		Tokens:  tokens,
		Logger:  logging.Discard(),
	})
	require.NoError(t, err)
	return client, server
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "  "})
	require.Error(t, err)
}

func TestBuildURL(t *testing.T) {
	client, err := New(Config{BaseURL: "http://localhost:8000/api/"})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", client.BaseURL())
	assert.Equal(t, "http://localhost:8000/api/projects", client.buildURL("/projects"))
	assert.Equal(t, "http://localhost:8000/api/projects", client.buildURL("projects"))
}

func TestRequestAttachesBearerToken(t *testing.T) {
	var gotAuth, gotAccept string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		assert.Equal(t, "/api/me", r.URL.Path)
		w.Write([]byte(`{"id":1}`))
	}, NewMemoryTokenStore("secret-token"))

	body, err := client.Get(context.Background(), "/me")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, map[string]any{"id": float64(1)}, body.Value())
}

func TestRequestWithoutAuth(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}, NewMemoryTokenStore("secret-token"))

	_, err := client.Get(context.Background(), "/projects", WithoutAuth())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestRequestNoTokenNoHeader(t *testing.T) {
	var hasAuth bool
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
	}, nil)

	_, err := client.Get(context.Background(), "/courses")
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestRequestJSONBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(101), payload["course_id"])
		w.Write([]byte(`{"payment_url":"https://pay.example.com/course/101"}`))
	}, nil)

	body, err := client.Post(context.Background(), "/payments/course", map[string]int{"course_id": 101})
	require.NoError(t, err)

	var out struct {
		PaymentURL string `json:"payment_url"`
	}
	require.NoError(t, body.Decode(&out))
	assert.Equal(t, "https://pay.example.com/course/101", out.PaymentURL)
}

func TestRequestReaderBodyLeavesHeadersAlone(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "multipart/form-data; boundary=xyz", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		assert.Equal(t, "--xyz--", string(raw))
	}, nil)

	_, err := client.Post(context.Background(), "/upload", strings.NewReader("--xyz--"),
		WithHeader("Content-Type", "multipart/form-data; boundary=xyz"))
	require.NoError(t, err)
}

func TestRequestVerbs(t *testing.T) {
	var methods []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
	}, nil)

	ctx := context.Background()
	_, err := client.Put(ctx, "/x", map[string]string{})
	require.NoError(t, err)
	_, err = client.Patch(ctx, "/x", map[string]string{})
	require.NoError(t, err)
	_, err = client.Delete(ctx, "/x")
	require.NoError(t, err)

	assert.Equal(t, []string{http.MethodPut, http.MethodPatch, http.MethodDelete}, methods)
}

func TestRequestMalformedJSONFallsBackToText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`ok, not json`))
	}, nil)

	body, err := client.Get(context.Background(), "/setup-webhook")
	require.NoError(t, err)
	assert.False(t, body.IsJSON())
	assert.Equal(t, "ok, not json", body.Value())

	var out map[string]any
	require.NoError(t, body.Decode(&out))
	assert.Nil(t, out)
}

func TestRequestEmptyBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	body, err := client.Delete(context.Background(), "/x")
	require.NoError(t, err)
	assert.Nil(t, body.Value())
}

func TestRequestErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantPayload any
	}{
		{
			name:        "message field wins",
			status:      http.StatusNotFound,
			body:        `{"message":"not found"}`,
			wantMessage: "not found",
			wantPayload: map[string]any{"message": "not found"},
		},
		{
			name:        "json without message",
			status:      http.StatusUnprocessableEntity,
			body:        `{"errors":["bad"]}`,
			wantMessage: "Request failed with status 422: Unprocessable Entity",
			wantPayload: map[string]any{"errors": []any{"bad"}},
		},
		{
			name:        "plain text body",
			status:      http.StatusBadGateway,
			body:        `upstream exploded`,
			wantMessage: "Request failed with status 502: Bad Gateway",
			wantPayload: "upstream exploded",
		},
		{
			name:        "empty message string",
			status:      http.StatusUnauthorized,
			body:        `{"message":""}`,
			wantMessage: "Request failed with status 401: Unauthorized",
			wantPayload: map[string]any{"message": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, nil)

			_, err := client.Get(context.Background(), "/courses")
			require.Error(t, err)

			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantMessage, apiErr.Error())
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantPayload, apiErr.Payload)
			assert.True(t, IsStatus(err, tt.status))
		})
	}
}

func TestRequestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := New(Config{BaseURL: server.URL, Logger: logging.Discard()})
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/projects")
	require.Error(t, err)
	_, ok := AsAPIError(err)
	assert.False(t, ok, "transport failures are not APIErrors")
}

func TestRequestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	metrics := NewMetrics(reg)
	client, err := New(Config{BaseURL: server.URL, Metrics: metrics, Logger: logging.Discard()})
	require.NoError(t, err)

	_, _ = client.Get(context.Background(), "/ok")
	_, _ = client.Get(context.Background(), "/missing")

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "4xx")))
}

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore("")
	require.NoError(t, store.SetToken("abc"))
	token, _ := store.Token()
	assert.Equal(t, "abc", token)

	require.NoError(t, store.ClearToken())
	token, _ = store.Token()
	assert.Empty(t, token)
}
