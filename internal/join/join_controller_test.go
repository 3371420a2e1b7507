package join

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev0b1/multi-ai-user-debate/internal/agent"
	"github.com/dev0b1/multi-ai-user-debate/internal/token"
)

func newTestServer(t *testing.T) (*echo.Echo, *agent.Registry, *agent.Launcher) {
	t.Helper()

	// Stand in a harmless long-running process for the python agent.
	t.Setenv("AGENT_PYTHON", "sleep")
	t.Setenv("AGENT_SCRIPT", "60")
	t.Setenv("LIVEKIT_URL", "wss://livekit.test")
	t.Setenv("LIVEKIT_API_KEY", "devkey")
	t.Setenv("LIVEKIT_API_SECRET", "secret")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := agent.NewRegistry()
	launcher := agent.NewLauncher(agent.NewLauncher_Params{
		Registry: registry,
		Logger:   logger,
	})

	ctrl := NewJoinController(newJoinController_Params{
		TokenService: token.NewAccessTokenService(),
		Registry:     registry,
		Launcher:     launcher,
		Logger:       logger,
	})

	router := echo.New()
	require.NoError(t, ctrl.Resolve(router))
	return router, registry, launcher
}

func doRequest(router *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJoin(t *testing.T) {
	router, registry, launcher := newTestServer(t)
	defer launcher.Stop("philosophy-101")

	rec := doRequest(router, http.MethodPost, "/join",
		`{"room":"philosophy-101","topic":"Is free will real?","persona":"socrates","stance":"pro"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp joinResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "wss://livekit.test", resp.URL)
	assert.Equal(t, "philosophy-101", resp.Room)
	assert.True(t, strings.HasPrefix(resp.Identity, "human-"), "identity %q", resp.Identity)
	assert.Equal(t, "socrates", resp.Agent.Persona)
	assert.Equal(t, "Is free will real?", resp.Agent.Topic)
	assert.Equal(t, "pro", resp.Agent.Stance)
	assert.Equal(t, 3, resp.Agent.TurnDuration)
	assert.Equal(t, 4, resp.Agent.NumberOfTurns)

	assert.Equal(t, 1, registry.Len())
	assert.True(t, registry.Has("philosophy-101"))

	// The token must be valid for the returned identity.
	tok, err := jwt.Parse([]byte(resp.Token),
		jwt.WithKey(jwa.HS256, []byte("secret")),
		jwt.WithValidate(true),
	)
	require.NoError(t, err)
	assert.Equal(t, resp.Identity, tok.Subject())
	assert.WithinDuration(t, time.Now().Add(token.DefaultTTL), tok.Expiration(), time.Second)
}

func TestJoinDuplicateRoom(t *testing.T) {
	router, registry, launcher := newTestServer(t)
	defer launcher.Stop("philosophy-101")

	body := `{"room":"philosophy-101","topic":"Is free will real?","persona":"socrates","stance":"pro"}`

	first := doRequest(router, http.MethodPost, "/join", body)
	require.Equal(t, http.StatusOK, first.Code)

	second := doRequest(router, http.MethodPost, "/join", body)
	require.Equal(t, http.StatusOK, second.Code)

	// Same agent keeps running; the second caller still gets a fresh token.
	assert.Equal(t, 1, registry.Len())

	var firstResp, secondResp joinResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))

	assert.True(t, strings.HasPrefix(secondResp.Identity, "human-"))
	assert.NotEmpty(t, secondResp.Token)
	assert.NotEqual(t, firstResp.Identity, secondResp.Identity)
}

func TestJoinCustomUser(t *testing.T) {
	router, _, launcher := newTestServer(t)
	defer launcher.Stop("philosophy-101")

	rec := doRequest(router, http.MethodPost, "/join",
		`{"room":"philosophy-101","user":"debater-1","topic":"Is free will real?","persona":"socrates","stance":"con","turnDuration":5,"numberOfTurns":6}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp joinResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "debater-1", resp.Identity)
	assert.Equal(t, 5, resp.Agent.TurnDuration)
	assert.Equal(t, 6, resp.Agent.NumberOfTurns)
}

func TestJoinMissingFields(t *testing.T) {
	for name, body := range map[string]string{
		"NoRoom":    `{"topic":"t","persona":"socrates","stance":"pro"}`,
		"NoTopic":   `{"room":"r","persona":"socrates","stance":"pro"}`,
		"NoPersona": `{"room":"r","topic":"t","stance":"pro"}`,
		"NoStance":  `{"room":"r","topic":"t","persona":"socrates"}`,
		"Empty":     `{}`,
	} {
		body := body
		t.Run(name, func(t *testing.T) {
			router, registry, _ := newTestServer(t)

			rec := doRequest(router, http.MethodPost, "/join", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, "Missing required fields")

			assert.Equal(t, 0, registry.Len())
		})
	}
}

func TestHealthMatchesAgentList(t *testing.T) {
	router, _, launcher := newTestServer(t)
	defer launcher.Stop("room-1")
	defer launcher.Stop("room-2")

	for _, room := range []string{"room-1", "room-2"} {
		rec := doRequest(router, http.MethodPost, "/join",
			`{"room":"`+room+`","topic":"t","persona":"einstein","stance":"con"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	health := doRequest(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, health.Code)

	var healthResp healthResponse
	require.NoError(t, json.Unmarshal(health.Body.Bytes(), &healthResp))
	assert.Equal(t, "ok", healthResp.Status)
	assert.NotEmpty(t, healthResp.Timestamp)

	agents := doRequest(router, http.MethodGet, "/agents", "")
	require.Equal(t, http.StatusOK, agents.Code)

	var agentsResp struct {
		Agents [][]json.RawMessage `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(agents.Body.Bytes(), &agentsResp))
	assert.Equal(t, healthResp.ActiveAgents, len(agentsResp.Agents))
	assert.Len(t, agentsResp.Agents, 2)

	for _, pair := range agentsResp.Agents {
		require.Len(t, pair, 2)
	}
}

func TestAgentDelete(t *testing.T) {
	router, registry, _ := newTestServer(t)

	rec := doRequest(router, http.MethodPost, "/join",
		`{"room":"philosophy-101","topic":"t","persona":"gandhi","stance":"pro"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, registry.Has("philosophy-101"))

	del := doRequest(router, http.MethodDelete, "/agents/philosophy-101", "")
	require.Equal(t, http.StatusOK, del.Code)

	var resp agentDeleteResponse
	require.NoError(t, json.Unmarshal(del.Body.Bytes(), &resp))
	assert.Equal(t, "Room philosophy-101 deleted", resp.Message)

	require.Eventually(t, func() bool {
		return !registry.Has("philosophy-101")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAgentDeleteUnknownRoom(t *testing.T) {
	router, _, _ := newTestServer(t)

	rec := doRequest(router, http.MethodDelete, "/agents/never-joined", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Room not found", resp.Error)
}
