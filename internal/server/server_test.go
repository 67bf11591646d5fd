package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ghpool-go/internal/config"
	"ghpool-go/internal/github"
	"ghpool-go/internal/tokenring"
	"ghpool-go/internal/usage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer wires a server against a stub upstream API.
func newTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/rate_limit":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"rate":{"limit":5000,"remaining":4800}}`))
		case strings.Contains(r.URL.Path, "/statuses/"):
			w.Header().Set("X-RateLimit-Remaining", "4800")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":1,"state":"success"}`))
		case strings.Contains(r.URL.Path, "/comments"):
			w.Header().Set("X-RateLimit-Remaining", "4800")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":2}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)

	client, err := github.New(github.Options{
		BaseURL: upstream.URL,
		Tokens:  []tokenring.Token{"ghp_aaaaaaaaaa", "ghp_bbbbbbbbbb"},
	})
	require.NoError(t, err)

	return New(cfg, client, usage.NewTracker(nil, time.Hour)), upstream
}

func authedConfig() *config.Config {
	cfg := config.Default()
	cfg.Tokens = []string{"ghp_aaaaaaaaaa"}
	cfg.ManagementKey = "sesame"
	return cfg
}

func doJSON(srv *Server, method, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthzIsOpen(t *testing.T) {
	srv, _ := newTestServer(t, authedConfig())

	w := doJSON(srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "status").String())
}

func TestPoolRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, authedConfig())

	assert.Equal(t, http.StatusUnauthorized, doJSON(srv, http.MethodGet, "/v1/pool", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(srv, http.MethodGet, "/v1/pool", "wrong", "").Code)
	assert.Equal(t, http.StatusOK, doJSON(srv, http.MethodGet, "/v1/pool", "sesame", "").Code)
}

func TestAuthDisabledWithoutKey(t *testing.T) {
	cfg := authedConfig()
	cfg.ManagementKey = ""
	srv, _ := newTestServer(t, cfg)

	assert.Equal(t, http.StatusForbidden, doJSON(srv, http.MethodGet, "/v1/pool", "anything", "").Code)
}

func TestAuthAcceptsBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-key"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := authedConfig()
	cfg.ManagementKey = ""
	cfg.ManagementKeyHash = string(hash)
	srv, _ := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, doJSON(srv, http.MethodGet, "/v1/pool", "hashed-key", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(srv, http.MethodGet, "/v1/pool", "nope", "").Code)
}

func TestPoolStatusReportsMaskedTokens(t *testing.T) {
	srv, _ := newTestServer(t, authedConfig())

	w := doJSON(srv, http.MethodGet, "/v1/pool", "sesame", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Equal(t, "ghp_****aaaa", gjson.Get(body, "active_token").String())
	assert.EqualValues(t, 2, gjson.Get(body, "pool_size").Int())
	assert.NotContains(t, body, "ghp_aaaaaaaaaa")
}

func TestPoolProbeReturnsRemaining(t *testing.T) {
	srv, _ := newTestServer(t, authedConfig())

	w := doJSON(srv, http.MethodPost, "/v1/pool/probe", "sesame", "")
	require.Equal(t, http.StatusOK, w.Code)

	results := gjson.Get(w.Body.String(), "results").Array()
	require.Len(t, results, 2)
	for _, r := range results {
		assert.EqualValues(t, 4800, r.Get("remaining").Int())
	}
}

func TestStatusRelayPassesUpstreamResponse(t *testing.T) {
	srv, _ := newTestServer(t, authedConfig())

	w := doJSON(srv, http.MethodPost, "/v1/repos/apache/arrow/statuses/abc123", "sesame",
		`{"state":"success","context":"ci/build"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", gjson.Get(w.Body.String(), "state").String())
}

func TestStatusRelayRejectsInvalidState(t *testing.T) {
	srv, _ := newTestServer(t, authedConfig())

	w := doJSON(srv, http.MethodPost, "/v1/repos/apache/arrow/statuses/abc123", "sesame",
		`{"state":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommentRelay(t *testing.T) {
	srv, _ := newTestServer(t, authedConfig())

	w := doJSON(srv, http.MethodPost, "/v1/repos/apache/arrow/issues/42/comments", "sesame",
		`{"body":"build green"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.EqualValues(t, 2, gjson.Get(w.Body.String(), "id").Int())
}

func TestCommentRelayRejectsBadNumber(t *testing.T) {
	srv, _ := newTestServer(t, authedConfig())

	w := doJSON(srv, http.MethodPost, "/v1/repos/apache/arrow/issues/forty/comments", "sesame",
		`{"body":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRelayReturnsBadGatewayOnTransportFailure(t *testing.T) {
	srv, upstream := newTestServer(t, authedConfig())
	upstream.Close()

	w := doJSON(srv, http.MethodPost, "/v1/repos/apache/arrow/issues/42/comments", "sesame",
		`{"body":"x"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
