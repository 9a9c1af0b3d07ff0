package credential

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cred.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewStore(s.SettingsRepo())
}

func TestStatic(t *testing.T) {
	key, err := Static(" gsk_abc ").APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gsk_abc", key)

	_, err = Static("").APIKey(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindMissingCredential))
}

func TestEnv_ReadAtCallTime(t *testing.T) {
	env := EnvFor("groq")
	assert.Equal(t, []string{"TEACHKIT_API_KEY", "GROQ_API_KEY"}, env.Vars)

	t.Setenv("TEACHKIT_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	_, err := env.APIKey(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindMissingCredential))

	t.Setenv("GROQ_API_KEY", "gsk_later")
	key, err := env.APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gsk_later", key)
}

func TestChain(t *testing.T) {
	c := Chain{Static(""), Static("second")}
	key, err := c.APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", key)

	_, err = Chain{Static("")}.APIKey(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindMissingCredential))
}

func TestStore_SetClearNotCached(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.APIKey(ctx)
	assert.True(t, apperr.Is(err, apperr.KindMissingCredential))

	require.NoError(t, s.Set(ctx, "  gsk_1  "))
	key, err := s.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gsk_1", key)

	require.NoError(t, s.Set(ctx, "gsk_2"))
	key, err = s.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gsk_2", key, "a replaced key is visible on the next call")

	require.NoError(t, s.Clear(ctx))
	_, err = s.APIKey(ctx)
	assert.True(t, apperr.Is(err, apperr.KindMissingCredential))
}

func TestStore_RejectsBlank(t *testing.T) {
	s := newTestStore(t)
	err := s.Set(context.Background(), "   ")
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestStore_OnboardingFlagIsOneShot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prompt, err := s.ShouldPrompt(ctx)
	require.NoError(t, err)
	assert.False(t, prompt, "no flag raised yet")

	require.NoError(t, s.RequestOnboarding(ctx))

	prompt, err = s.ShouldPrompt(ctx)
	require.NoError(t, err)
	assert.True(t, prompt)

	prompt, err = s.ShouldPrompt(ctx)
	require.NoError(t, err)
	assert.False(t, prompt, "flag is consumed")
}

func TestStore_MissingKeyLookupDoesNotWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.APIKey(ctx)
	assert.True(t, apperr.Is(err, apperr.KindMissingCredential))

	_, raised, err := s.settings.Get(ctx, onboardingSetting)
	require.NoError(t, err)
	assert.False(t, raised, "a lookup must not raise the onboarding flag")

	prompt, err := s.ShouldPrompt(ctx)
	require.NoError(t, err)
	assert.False(t, prompt)
}

func TestStore_OnboardingSkippedWhenKeyPresent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RequestOnboarding(ctx))
	require.NoError(t, s.Set(ctx, "gsk_1"))

	prompt, err := s.ShouldPrompt(ctx)
	require.NoError(t, err)
	assert.False(t, prompt)
}
