package match_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchmaker/internal/app"
	"github.com/oggyb/matchmaker/internal/config"
	"github.com/oggyb/matchmaker/internal/db"
	"github.com/oggyb/matchmaker/internal/logger"
	"github.com/oggyb/matchmaker/internal/server"
	"github.com/oggyb/matchmaker/internal/service/match"
	"github.com/oggyb/matchmaker/internal/testutils"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T, secret string) (*fiber.App, *app.AppContext) {
	t.Helper()

	gdb := testutils.OpenTestDB(t)
	rc, _ := testutils.NewTestRedis(t)
	cfg := config.New()
	cfg.Auth.JWTSecret = secret

	appCtx := app.New(cfg, gdb, rc, logger.Discard(), nil)
	return server.NewHTTPServer(cfg, logger.Discard(), match.NewRegistrar(appCtx)), appCtx
}

func bearer(t *testing.T, userID uint64) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, a *fiber.App, method, path string, body any, auth string) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHandlers_LikeFlow(t *testing.T) {
	a, appCtx := newTestApp(t, "")
	seedUser(t, appCtx.DB, 1, "alice")
	seedUser(t, appCtx.DB, 2, "bob", gender(db.GenderMale))

	// path names the target, body names the actor
	code, env := do(t, a, "POST", "/match/2/like", map[string]any{"id": 1}, "")
	require.Equal(t, 200, code)
	var first match.LikeResult
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.False(t, first.Matched)
	assert.Equal(t, uint64(1), first.Conversation.SenderID)
	assert.Equal(t, uint64(2), first.Conversation.ReceiverID)

	code, env = do(t, a, "POST", "/match/1/like", map[string]any{"id": 2}, "")
	require.Equal(t, 200, code)
	var second match.LikeResult
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.True(t, second.Matched)
	assert.Equal(t, db.ConversationActive, second.Conversation.Status)
	assert.Equal(t, uint64(1), second.Conversation.SenderID)

	code, env = do(t, a, "POST", "/match/1/like", map[string]any{"id": 1}, "")
	assert.Equal(t, 409, code)
	assert.Equal(t, "error", env.Status)

	code, _ = do(t, a, "POST", "/match/77/like", map[string]any{"id": 1}, "")
	assert.Equal(t, 404, code)

	code, _ = do(t, a, "POST", "/match/abc/like", map[string]any{"id": 2}, "")
	assert.Equal(t, 400, code)

	code, _ = do(t, a, "POST", "/match/2/like", map[string]any{}, "")
	assert.Equal(t, 400, code)
}

func TestHandlers_SkipTargetsPathUser(t *testing.T) {
	a, appCtx := newTestApp(t, "")
	seedUser(t, appCtx.DB, 1, "alice")
	seedUser(t, appCtx.DB, 2, "bob", gender(db.GenderMale))

	code, env := do(t, a, "POST", "/match/2/dislike", map[string]any{"id": 1}, "")
	require.Equal(t, 200, code)
	var profile match.Profile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, uint64(1), profile.ID)
	assert.Equal(t, []uint64{2}, profile.SkippedUsers)

	code, env = do(t, a, "DELETE", "/match/2/dislike", map[string]any{"id": 1}, "")
	require.Equal(t, 200, code)
	profile = match.Profile{}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Empty(t, profile.SkippedUsers)
}

func TestHandlers_LikeActorFromToken(t *testing.T) {
	a, appCtx := newTestApp(t, testSecret)
	seedUser(t, appCtx.DB, 1, "alice")
	seedUser(t, appCtx.DB, 2, "bob", gender(db.GenderMale))

	code, env := do(t, a, "POST", "/match/2/like", nil, bearer(t, 1))
	require.Equal(t, 200, code)
	var res match.LikeResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, uint64(1), res.Conversation.SenderID)
	assert.Equal(t, uint64(2), res.Conversation.ReceiverID)

	code, _ = do(t, a, "POST", "/match/1/like", map[string]any{"id": 2}, bearer(t, 1))
	assert.Equal(t, 401, code, "body actor differs from token subject")

	code, _ = do(t, a, "POST", "/match/2/like", map[string]any{"id": 1}, "")
	assert.Equal(t, 400, code, "missing token")
}

func TestHandlers_PotentialMatchesHidesSecrets(t *testing.T) {
	a, appCtx := newTestApp(t, "")
	seedUser(t, appCtx.DB, 1, "alice", gender(db.GenderMale))
	seedUser(t, appCtx.DB, 2, "bob")

	code, _ := do(t, a, "POST", "/match/2/dislike", map[string]any{"id": 1}, "")
	require.Equal(t, 200, code)

	code, env := do(t, a, "GET", "/match/1/potential-matches?showSkipped=true&limit=5", nil, "")
	require.Equal(t, 200, code)
	assert.NotContains(t, string(env.Data), "secret-hash")
	assert.NotContains(t, string(env.Data), "skippedUsers")

	var page struct {
		Results []map[string]any `json:"results"`
		Total   int64            `json:"total"`
		Limit   int              `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, "0", page.Results[0]["distance"])
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 5, page.Limit)

	code, env = do(t, a, "GET", "/match/1/potential-matches?showSkipped=true&page=4611686018427387904&limit=4", nil, "")
	require.Equal(t, 200, code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Empty(t, page.Results)
	assert.Equal(t, int64(1), page.Total)
}

func TestHandlers_Preferences(t *testing.T) {
	a, appCtx := newTestApp(t, "")
	seedUser(t, appCtx.DB, 1, "alice")

	code, _ := do(t, a, "PUT", "/match/1/preferences", map[string]any{"minAge": 25, "maxAge": 20}, "")
	assert.Equal(t, 409, code)

	code, env := do(t, a, "PUT", "/match/1/preferences", map[string]any{"maxDistance": 5}, "")
	require.Equal(t, 200, code)
	var pref db.Preference
	require.NoError(t, json.Unmarshal(env.Data, &pref))
	assert.Equal(t, 5, pref.MaxDistance)
	assert.Equal(t, db.GenderAny, pref.Gender)
}

func TestHandlers_TokenMustMatchUser(t *testing.T) {
	a, appCtx := newTestApp(t, testSecret)
	seedUser(t, appCtx.DB, 1, "alice")
	seedUser(t, appCtx.DB, 2, "bob")

	code, _ := do(t, a, "GET", "/match/1/liked-you/count", nil, "")
	assert.Equal(t, 400, code, "missing token")

	code, _ = do(t, a, "GET", "/match/1/liked-you/count", nil, bearer(t, 2))
	assert.Equal(t, 401, code, "token of another user")

	code, env := do(t, a, "GET", "/match/1/liked-you/count", nil, bearer(t, 1))
	require.Equal(t, 200, code)
	assert.JSONEq(t, `{"count":0}`, string(env.Data))
}
