package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
	"github.com/noah-isme/academic-tracker/pkg/middleware/requestid"
)

type staticToken string

func (s staticToken) BearerToken() string { return string(s) }

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
	codes []int
}

func (o *recordingObserver) ObserveAPICall(operation string, status int, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, operation)
	o.codes = append(o.codes, status)
}

type widget struct {
	ID   string `json:"_id" validate:"required"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc, creds Credentials, obs Observer) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", Timeout: time.Second}, creds, nil, nil, obs)
}

func TestDoSendsCredentialsAndDecodes(t *testing.T) {
	var got *http.Request
	var body map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"w1","name":"gear"}`))
	}, staticToken("tok-123"), nil)

	var out widget
	err := client.Do(context.Background(), Request{
		Operation: "widgets.create",
		Method:    http.MethodPost,
		Path:      "widgets",
		Query:     url.Values{"page": {"2"}},
		Body:      map[string]string{"name": "gear"},
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, widget{ID: "w1", Name: "gear"}, out)
	assert.Equal(t, "Bearer tok-123", got.Header.Get("Authorization"))
	assert.NotEmpty(t, got.Header.Get(requestid.Header))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "/widgets", got.URL.Path)
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "gear", body["name"])
}

func TestDoAnonymousSkipsAuthorization(t *testing.T) {
	var header string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, staticToken("tok"), nil)

	err := client.Do(context.Background(), Request{Operation: "auth.login", Method: http.MethodPost, Path: "/auth/login", Anonymous: true}, nil)

	require.NoError(t, err)
	assert.Empty(t, header)
}

func TestDoMapsStatusAndMessage(t *testing.T) {
	obs := &recordingObserver{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"La etapa ya existe"}`))
	}, nil, obs)

	err := client.Do(context.Background(), Request{Operation: "stages.create", Method: http.MethodPost, Path: "/etapas"}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	apiErr := appErrors.FromError(err)
	assert.Equal(t, "La etapa ya existe", apiErr.Message)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, []string{"stages.create"}, obs.calls)
	assert.Equal(t, []int{http.StatusConflict}, obs.codes)
}

func TestDoRejectsMalformedShapes(t *testing.T) {
	cases := map[string]string{
		"not json":        `<html>oops</html>`,
		"missing id":      `{"name":"gear"}`,
		"empty body":      ``,
		"null collection": `null`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(payload))
			}, nil, nil)

			var err error
			if name == "null collection" {
				var out []widget
				err = client.Do(context.Background(), Request{Operation: "widgets.list", Path: "/widgets"}, &out)
			} else {
				var out widget
				err = client.Do(context.Background(), Request{Operation: "widgets.get", Path: "/widgets/1"}, &out)
			}
			assert.True(t, errors.Is(err, appErrors.ErrParse), "got %v", err)
		})
	}
}

func TestDoValidatesArrayElements(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"a"},{"name":"no id"}]`))
	}, nil, nil)

	var out []widget
	err := client.Do(context.Background(), Request{Operation: "widgets.list", Path: "/widgets"}, &out)

	assert.True(t, errors.Is(err, appErrors.ErrParse))
	assert.Contains(t, err.Error(), "element 1")
}

func TestDoTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	obs := &recordingObserver{}
	client := New(Config{BaseURL: base, Timeout: time.Second}, nil, nil, nil, obs)
	err := client.Do(context.Background(), Request{Operation: "widgets.list", Path: "/widgets"}, nil)

	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, []int{0}, obs.codes)
}

func TestWithCredentialsDoesNotMutateOriginal(t *testing.T) {
	var headers []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}, nil, nil)

	authed := client.WithCredentials(staticToken("abc"))
	require.NoError(t, authed.Do(context.Background(), Request{Path: "/ping"}, nil))
	require.NoError(t, client.Do(context.Background(), Request{Path: "/ping"}, nil))

	assert.Equal(t, []string{"Bearer abc", ""}, headers)
}
