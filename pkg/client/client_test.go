package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/pathfinder/internal/api"
	"github.com/terra-clan/pathfinder/internal/captcha"
	"github.com/terra-clan/pathfinder/internal/catalog"
	"github.com/terra-clan/pathfinder/internal/chat"
	"github.com/terra-clan/pathfinder/internal/config"
	"github.com/terra-clan/pathfinder/internal/filter"
	"github.com/terra-clan/pathfinder/internal/models"
	"github.com/terra-clan/pathfinder/internal/services"
	"github.com/terra-clan/pathfinder/internal/session"
	"github.com/terra-clan/pathfinder/internal/storage"
)

type testEnv struct {
	client   *Client
	captchas *captcha.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := storage.NewMemoryRepository()
	captchas := captcha.NewService(captcha.NewMemoryStore(), captcha.Config{})
	sessions := session.NewManager(repo, captchas, session.NewTokenIssuer("test-secret"), session.Config{
		TTL:          time.Hour,
		DemoPassword: "abc",
	})
	filters := filter.NewStore()
	chats := chat.NewService(repo, 0)
	t.Cleanup(chats.Close)
	sessions.OnEnd(filters.Delete)
	sessions.OnEnd(chats.EndSession)

	server := api.NewServer(config.ServerConfig{}, api.Deps{
		Catalog:  catalog.NewLoader(),
		Captcha:  captchas,
		Sessions: sessions,
		Filters:  filters,
		Chat:     chats,
		Health:   services.NewRegistry(),
	})
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return &testEnv{
		client:   NewClient(ts.URL+"/", WithTimeout(5*time.Second)),
		captchas: captchas,
	}
}

// login solves a captcha using the server-side code and signs in
func (e *testEnv) login(t *testing.T) *models.LoginResponse {
	t.Helper()
	ctx := context.Background()

	cp, err := e.client.CreateCaptcha(ctx)
	require.NoError(t, err)
	challenge, err := e.captchas.Get(ctx, cp.ID)
	require.NoError(t, err)

	ok, _, err := e.client.VerifyCaptcha(ctx, cp.ID, challenge.Code)
	require.NoError(t, err)
	require.True(t, ok)

	resp, err := e.client.Login(ctx, models.LoginRequest{
		Email:     "alex@example.com",
		Password:  "abc",
		CaptchaID: cp.ID,
	})
	require.NoError(t, err)
	return resp
}

func TestHealthAndCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.client.Health(ctx))

	list, err := env.client.ListLearningPaths(ctx, ListOptions{Level: []string{"Beginner"}})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 6, list.CatalogSize)

	lp, err := env.client.GetLearningPath(ctx, list.LearningPaths[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list.LearningPaths[0].Title, lp.Title)

	_, err = env.client.GetLearningPath(ctx, "missing")
	assert.True(t, IsCode(err, "not_found"))

	careers, err := env.client.ListCareers(ctx)
	require.NoError(t, err)
	assert.Len(t, careers, 4)
}

func TestCaptchaWrongGuess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cp, err := env.client.CreateCaptcha(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, cp.ImageURL)

	ok, after, err := env.client.VerifyCaptcha(ctx, cp.ID, "!!!!!!")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, after.Attempts)
	assert.NotEmpty(t, after.Error)

	_, _, err = env.client.VerifyCaptcha(ctx, "missing", "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestLoginRequiresCaptcha(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cp, err := env.client.CreateCaptcha(ctx)
	require.NoError(t, err)

	_, err = env.client.Login(ctx, models.LoginRequest{Email: "a@b.c", Password: "abc", CaptchaID: cp.ID})
	assert.True(t, IsCode(err, "captcha_required"))
	assert.Empty(t, env.client.Token())
}

func TestSessionFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.login(t)
	assert.Equal(t, resp.Token, env.client.Token())

	me, err := env.client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", me.User.Email)

	role := "Product Designer"
	u, err := env.client.UpdateProfile(ctx, models.ProfileUpdate{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, role, u.Role)

	u, err = env.client.AddProfileItem(ctx, "skills", "Go")
	require.NoError(t, err)
	assert.Equal(t, "Go", u.Skills[len(u.Skills)-1])

	before := len(u.Skills)
	u, err = env.client.RemoveProfileItem(ctx, "skills", before-1)
	require.NoError(t, err)
	assert.Len(t, u.Skills, before-1)

	f, err := env.client.ToggleFilter(ctx, "level", "Advanced")
	require.NoError(t, err)
	assert.Equal(t, []string{"Advanced"}, f.Filters.Level)
	assert.Equal(t, 1, f.Results.Total)

	f, err = env.client.SetFilterQuery(ctx, "nothing matches this")
	require.NoError(t, err)
	assert.Equal(t, 0, f.Results.Total)

	f, err = env.client.ClearFilters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, f.Results.Total)

	msg, err := env.client.SendChatMessage(ctx, "What careers fit me?")
	require.NoError(t, err)
	assert.Equal(t, models.SenderUser, msg.Sender)

	assert.Eventually(t, func() bool {
		msgs, err := env.client.ChatMessages(ctx)
		return err == nil && len(msgs) == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, env.client.ClearChat(ctx))
	msgs, err := env.client.ChatMessages(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, env.client.Logout(ctx))
	assert.Empty(t, env.client.Token())

	_, err = env.client.Me(ctx)
	assert.True(t, IsCode(err, "missing_token"))

	_, err = NewClient(env.client.baseURL, WithToken(resp.Token)).Me(ctx)
	assert.True(t, IsCode(err, "session_not_found"))
}
