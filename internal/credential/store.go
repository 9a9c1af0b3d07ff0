package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/store"
)

const (
	apiKeySetting     = "api_key"
	onboardingSetting = "show_api_key_prompt"
)

// Store persists the API key and the one-shot onboarding flag.
type Store struct {
	settings store.SettingsRepo
}

// NewStore creates a Store over a settings repository.
func NewStore(settings store.SettingsRepo) *Store {
	return &Store{settings: settings}
}

// APIKey returns the stored key. It only reads; interactive commands call
// RequestOnboarding themselves when no key source is available.
func (s *Store) APIKey(ctx context.Context) (string, error) {
	key, ok, err := s.settings.Get(ctx, apiKeySetting)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	if ok && strings.TrimSpace(key) != "" {
		return key, nil
	}
	return "", missing("stored credential")
}

// Set stores a trimmed key. Blank keys are rejected.
func (s *Store) Set(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperr.New(apperr.KindInvalidInput, "set credential", errors.New("Please enter your API key"))
	}
	return s.settings.Set(ctx, apiKeySetting, key)
}

// Clear removes the stored key.
func (s *Store) Clear(ctx context.Context) error {
	return s.settings.Delete(ctx, apiKeySetting)
}

// HasKey reports whether a non-blank key is stored.
func (s *Store) HasKey(ctx context.Context) (bool, error) {
	key, ok, err := s.settings.Get(ctx, apiKeySetting)
	if err != nil {
		return false, err
	}
	return ok && strings.TrimSpace(key) != "", nil
}

// RequestOnboarding raises the onboarding flag.
func (s *Store) RequestOnboarding(ctx context.Context) error {
	return s.settings.Set(ctx, onboardingSetting, "true")
}

// ShouldPrompt reports whether the user should be asked for a key now.
// It is true only when the flag is raised and no key is stored, and it
// consumes the flag when it returns true.
func (s *Store) ShouldPrompt(ctx context.Context) (bool, error) {
	flag, ok, err := s.settings.Get(ctx, onboardingSetting)
	if err != nil {
		return false, err
	}
	if !ok || flag != "true" {
		return false, nil
	}

	has, err := s.HasKey(ctx)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}

	if err := s.settings.Delete(ctx, onboardingSetting); err != nil {
		return false, err
	}
	return true, nil
}
