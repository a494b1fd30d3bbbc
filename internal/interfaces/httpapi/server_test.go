package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"txview/internal/application"
	"txview/internal/infrastructure/search"
	"txview/internal/interfaces/page"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{"aggregations": {"message_types": {"buckets": [
	{"key": "transfer", "docs": {"hits": {"hits": [
		{"_source": {"id": "1", "message_types": "transfer", "success": true, "chain_name": "elys", "hash": "abc123", "height": 42, "memo": "", "addresses": ["addr1", "addr2"]}}
	]}}},
	{"key": "vote", "docs": {"hits": {"hits": []}}}
]}}}`

type fixture struct {
	view    *application.View
	metrics *Metrics
	server  *httptest.Server
}

func newFixture(t *testing.T, searchHandler http.HandlerFunc) *fixture {
	t.Helper()
	upstream := httptest.NewServer(searchHandler)
	t.Cleanup(upstream.Close)

	client, err := search.NewClient(search.Config{URL: upstream.URL})
	require.NoError(t, err)
	metrics := NewMetrics()
	view, err := application.NewView(client, metrics)
	require.NoError(t, err)
	renderer, err := page.NewRenderer("")
	require.NoError(t, err)

	srv, err := NewServer(view, renderer, metrics, BuildInfo{Version: "1.2.3", Commit: "abc", BuildTime: "now"})
	require.NoError(t, err)
	httpServer := httptest.NewServer(srv.Handler())
	t.Cleanup(httpServer.Close)
	t.Cleanup(view.Unmount)

	return &fixture{view: view, metrics: metrics, server: httpServer}
}

func (f *fixture) mountAndWait(t *testing.T) {
	t.Helper()
	f.view.Mount(context.Background())
	select {
	case <-f.view.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("view did not settle")
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, nil, nil, BuildInfo{})
	assert.Error(t, err)
}

func TestServer_PageReady(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody))
	})
	f.mountAndWait(t)

	status, body := get(t, f.server.URL+"/")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, strings.Count(body, `class="message-group"`))
	assert.Equal(t, 1, strings.Count(body, `class="transaction"`))
	assert.Contains(t, body, `<h3 style="color: red">transfer</h3>`)
	assert.Contains(t, body, `<h3 style="color: red">vote</h3>`)
	assert.Contains(t, body, `href="https://testnet.ping.pub/elys/tx/abc123"`)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().Renders)
}

func TestServer_PageLoadingThenReady(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(searchBody))
	})
	f.view.Mount(context.Background())

	_, body := get(t, f.server.URL+"/")
	assert.Contains(t, body, `<div id="root"><div>Loading...</div></div>`)
	status, _ := get(t, f.server.URL+"/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	close(release)
	<-f.view.Done()

	status, _ = get(t, f.server.URL+"/readyz")
	assert.Equal(t, http.StatusOK, status)
	_, body = get(t, f.server.URL+"/")
	assert.Contains(t, body, `class="message-group"`)
}

func TestServer_PageFailure(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	f.mountAndWait(t)

	status, body := get(t, f.server.URL+"/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<div id="root"><div>Error: Failed to fetch data from Elasticsearch</div></div>`)
	assert.NotContains(t, body, `class="message-group"`)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().FetchFailed[application.ErrorKindTransport])
}

func TestServer_PageShapeFailure(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"aggregations": {"message_types": {"buckets": [{"key": "x"}]}}}`))
	})
	f.mountAndWait(t)

	_, body := get(t, f.server.URL+"/")
	assert.Contains(t, body, "Error: Failed to fetch data from Elasticsearch")
	assert.Equal(t, uint64(1), f.metrics.Snapshot().FetchFailed[application.ErrorKindShape])
}

func TestServer_UnknownPathIsNotFound(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	status, _ := get(t, f.server.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_TransactionsJSON(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody))
	})
	f.mountAndWait(t)

	status, body := get(t, f.server.URL+"/api/transactions")
	require.Equal(t, http.StatusOK, status)

	var payload struct {
		Phase  string `json:"phase"`
		Groups []struct {
			Key          string `json:"key"`
			Transactions []struct {
				Hash string `json:"hash"`
			} `json:"transactions"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, "ready", payload.Phase)
	require.Len(t, payload.Groups, 2)
	assert.Equal(t, "transfer", payload.Groups[0].Key)
	assert.Equal(t, "abc123", payload.Groups[0].Transactions[0].Hash)
	assert.Equal(t, "vote", payload.Groups[1].Key)
	assert.Empty(t, payload.Groups[1].Transactions)
}

func TestServer_HealthVersionMetrics(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody))
	})
	f.mountAndWait(t)

	status, body := get(t, f.server.URL+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status": "ok"}`, body)

	_, body = get(t, f.server.URL+"/version")
	assert.JSONEq(t, `{"version": "1.2.3", "commit": "abc", "build_time": "now"}`, body)

	_, body = get(t, f.server.URL+"/metrics")
	assert.Contains(t, body, "txview_fetch_started_total 1\n")
	assert.Contains(t, body, "txview_fetch_succeeded_total 1\n")
	assert.Contains(t, body, "txview_groups 2\n")
	assert.Contains(t, body, "txview_transactions 1\n")
	assert.Contains(t, body, `txview_fetch_failed_total{kind="shape"} 0`)
}

type failingRenderer struct{}

func (failingRenderer) RenderPage(w io.Writer, state application.ViewState) error {
	return errors.New("template exploded")
}

type fixedState struct{ state application.ViewState }

func (f fixedState) State() application.ViewState { return f.state }

func (f fixedState) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

func TestServer_RenderErrorIs500(t *testing.T) {
	metrics := NewMetrics()
	srv, err := NewServer(fixedState{state: application.ViewState{Phase: application.PhaseLoading}}, failingRenderer{}, metrics, BuildInfo{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, uint64(1), metrics.Snapshot().RenderErrs)
}

func TestServer_PageRejectsPost(t *testing.T) {
	srv, err := NewServer(fixedState{}, failingRenderer{}, nil, BuildInfo{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
