package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/pathfinder/internal/captcha"
	"github.com/terra-clan/pathfinder/internal/models"
	"github.com/terra-clan/pathfinder/internal/storage"
)

type fixture struct {
	mgr     *Manager
	captcha *captcha.Service
	repo    *storage.MemoryRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := storage.NewMemoryRepository()
	svc := captcha.NewService(captcha.NewMemoryStore(), captcha.Config{})
	mgr := NewManager(repo, svc, NewTokenIssuer("test-secret"), Config{
		TTL:          time.Hour,
		DemoPassword: "abc",
	})
	return &fixture{mgr: mgr, captcha: svc, repo: repo}
}

// solvedCaptcha returns the ID of a verified challenge
func (f *fixture) solvedCaptcha(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	c, err := f.captcha.Create(ctx)
	require.NoError(t, err)
	_, ok, err := f.captcha.Verify(ctx, c.ID, c.Code)
	require.NoError(t, err)
	require.True(t, ok)
	return c.ID
}

func (f *fixture) login(t *testing.T) *models.LoginResponse {
	t.Helper()
	resp, err := f.mgr.Login(context.Background(), models.LoginRequest{
		Email:     "alex@example.com",
		Password:  "abc",
		CaptchaID: f.solvedCaptcha(t),
	})
	require.NoError(t, err)
	return resp
}

func TestLoginCreatesDemoUser(t *testing.T) {
	f := newFixture(t)
	resp := f.login(t)

	require.NotEmpty(t, resp.Token)
	assert.Equal(t, DefaultName, resp.User.Name)
	assert.Equal(t, DefaultRole, resp.User.Role)
	assert.Equal(t, "alex@example.com", resp.User.Email)
	assert.Contains(t, resp.User.Skills, "Figma")

	s, err := f.mgr.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, s.UserID)
}

func TestLoginReusesUserByEmail(t *testing.T) {
	f := newFixture(t)
	first := f.login(t)
	second := f.login(t)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestLoginRequiresVerifiedCaptcha(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mgr.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "abc"})
	assert.ErrorIs(t, err, ErrCaptchaRequired)

	c, err := f.captcha.Create(ctx)
	require.NoError(t, err)
	_, err = f.mgr.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "abc", CaptchaID: c.ID})
	assert.ErrorIs(t, err, ErrCaptchaRequired)

	_, err = f.mgr.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "abc", CaptchaID: "missing"})
	assert.ErrorIs(t, err, ErrCaptchaRequired)
}

func TestLoginWrongPasswordKeepsCaptcha(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.solvedCaptcha(t)

	_, err := f.mgr.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "nope", CaptchaID: id})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := f.mgr.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "abc", CaptchaID: id})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	// consumed by the successful login
	_, err = f.mgr.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "abc", CaptchaID: id})
	assert.ErrorIs(t, err, ErrCaptchaRequired)
}

func TestLoginDelayHonorsCancellation(t *testing.T) {
	f := newFixture(t)
	f.mgr.config.LoginDelay = time.Hour
	id := f.solvedCaptcha(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.mgr.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "abc", CaptchaID: id})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// nothing was committed
	u, err := f.repo.GetUserByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestLogoutRunsHooks(t *testing.T) {
	f := newFixture(t)
	resp := f.login(t)
	ctx := context.Background()

	var mu sync.Mutex
	var ended []string
	f.mgr.OnEnd(func(id string) {
		mu.Lock()
		defer mu.Unlock()
		ended = append(ended, id)
	})

	s, err := f.mgr.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	require.NoError(t, f.mgr.Logout(ctx, s.ID))

	assert.Equal(t, []string{s.ID}, ended)

	_, err = f.mgr.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, f.mgr.Logout(ctx, s.ID), ErrSessionNotFound)
}

func TestExpire(t *testing.T) {
	f := newFixture(t)
	resp := f.login(t)
	ctx := context.Background()

	var ended []string
	f.mgr.OnEnd(func(id string) { ended = append(ended, id) })

	ids, err := f.mgr.Expire(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	f.mgr.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	ids, err = f.mgr.Expire(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, ids, ended)

	_, err = f.mgr.Authenticate(ctx, resp.Token)
	assert.Error(t, err)
}

func TestAuthenticateRejectsForeignToken(t *testing.T) {
	f := newFixture(t)
	resp := f.login(t)

	other := NewTokenIssuer("other-secret")
	_, err := other.Parse(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.mgr.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	resp := f.login(t)
	ctx := context.Background()
	s, err := f.mgr.Authenticate(ctx, resp.Token)
	require.NoError(t, err)

	bio := "Designer learning Go"
	u, err := f.mgr.UpdateProfile(ctx, s, models.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, u.Bio)
	assert.Equal(t, DefaultName, u.Name)

	stored, err := f.mgr.User(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, bio, stored.Bio)

	empty := " "
	_, err = f.mgr.UpdateProfile(ctx, s, models.ProfileUpdate{Email: &empty})
	assert.Error(t, err)
}

func TestProfileItems(t *testing.T) {
	f := newFixture(t)
	resp := f.login(t)
	ctx := context.Background()
	s, err := f.mgr.Authenticate(ctx, resp.Token)
	require.NoError(t, err)

	u, err := f.mgr.AddItem(ctx, s, FieldSkills, "  Go  ")
	require.NoError(t, err)
	assert.Equal(t, "Go", u.Skills[len(u.Skills)-1])
	n := len(u.Skills)

	u, err = f.mgr.AddItem(ctx, s, FieldSkills, "   ")
	require.NoError(t, err)
	assert.Len(t, u.Skills, n)

	u, err = f.mgr.AddItem(ctx, s, FieldSkills, "Go")
	require.NoError(t, err)
	assert.Len(t, u.Skills, n)

	u, err = f.mgr.RemoveItem(ctx, s, FieldInterests, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Frontend Development", "Accessibility"}, u.Interests)

	_, err = f.mgr.RemoveItem(ctx, s, FieldInterests, 5)
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = f.mgr.AddItem(ctx, s, "hobbies", "chess")
	assert.ErrorIs(t, err, ErrUnknownField)
}
