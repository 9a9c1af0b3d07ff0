// Package credential supplies the model provider API key. Keys are read at
// the moment of each call and never cached, so a key set or cleared between
// two actions takes effect on the next one.
package credential

import (
	"context"
	"os"
	"strings"

	"github.com/eadteachers/teachkit/internal/apperr"
)

// Provider returns the API key to use for the next request.
// A missing key is reported as apperr.KindMissingCredential.
type Provider interface {
	APIKey(ctx context.Context) (string, error)
}

func missing(op string) error {
	return apperr.New(apperr.KindMissingCredential, op, nil)
}

// Static always returns the same key.
type Static string

func (s Static) APIKey(context.Context) (string, error) {
	key := strings.TrimSpace(string(s))
	if key == "" {
		return "", missing("static credential")
	}
	return key, nil
}

// Env reads the first non-empty environment variable among Vars.
type Env struct {
	Vars []string
}

// EnvFor returns the environment lookup for a provider name, e.g.
// GROQ_API_KEY for "groq". TEACHKIT_API_KEY is always tried first.
func EnvFor(provider string) Env {
	vars := []string{"TEACHKIT_API_KEY"}
	if provider != "" && provider != "mock" {
		vars = append(vars, strings.ToUpper(provider)+"_API_KEY")
	}
	return Env{Vars: vars}
}

func (e Env) APIKey(context.Context) (string, error) {
	for _, v := range e.Vars {
		if key := strings.TrimSpace(os.Getenv(v)); key != "" {
			return key, nil
		}
	}
	return "", missing("env credential")
}

// Chain tries each provider in order and returns the first key found.
type Chain []Provider

func (c Chain) APIKey(ctx context.Context) (string, error) {
	for _, p := range c {
		key, err := p.APIKey(ctx)
		if err == nil {
			return key, nil
		}
		if !apperr.Is(err, apperr.KindMissingCredential) {
			return "", err
		}
	}
	return "", missing("credential chain")
}
