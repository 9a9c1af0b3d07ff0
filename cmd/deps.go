package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/assistant"
	"github.com/eadteachers/teachkit/internal/config"
	"github.com/eadteachers/teachkit/internal/credential"
	"github.com/eadteachers/teachkit/internal/llm"
	"github.com/eadteachers/teachkit/internal/logger"
	"github.com/eadteachers/teachkit/internal/planner"
	"github.com/eadteachers/teachkit/internal/store"
)

// deps holds what every command builds from flags and config.
type deps struct {
	cfg         *config.Config
	log         *logger.Logger
	store       *store.Store
	credentials *credential.Store
	keys        credential.Chain
}

// openDeps loads config, opens the store and builds the logger. The caller
// must call close.
func openDeps(cmd *cobra.Command) (*deps, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	creds := credential.NewStore(st.SettingsRepo())
	return &deps{
		cfg:         cfg,
		log:         logger.New(logger.Options{Mode: cfg.Log.Mode, File: cfg.Log.File}),
		store:       st,
		credentials: creds,
		keys:        credential.Chain{credential.EnvFor(cfg.LLM.Provider), creds},
	}, nil
}

func (d *deps) close() {
	d.log.Sync()
	_ = d.store.Close()
}

// provider builds the configured model provider. Request events are logged
// to the store so `teachkit llm` can inspect them.
func (d *deps) provider(cmd *cobra.Command) (llm.Provider, error) {
	p, err := llm.NewProvider(cmd.Context(), d.cfg.LLMProviderConfig(), d.keys, d.store.EventRepo(), d.log)
	if err != nil {
		return nil, fmt.Errorf("configure model provider: %w", err)
	}
	return p, nil
}

func (d *deps) generator(p llm.Provider) *assessment.Generator {
	cfg := assessment.DefaultConfig()
	cfg.Temperature = d.cfg.LLM.Temperature
	cfg.MaxTokens = d.cfg.LLM.MaxTokens
	return assessment.NewGenerator(p, cfg)
}

func (d *deps) grader(p llm.Provider) *assessment.Grader {
	cfg := assessment.DefaultConfig()
	cfg.Temperature = d.cfg.LLM.Temperature
	cfg.MaxTokens = d.cfg.LLM.MaxTokens
	return assessment.NewGrader(p, cfg)
}

func (d *deps) assistant(role assistant.Role, p llm.Provider) *assistant.Assistant {
	cfg := assistant.DefaultConfig()
	cfg.Temperature = d.cfg.LLM.Temperature
	return assistant.New(role, p, cfg, d.log)
}

func (d *deps) planner() *planner.Client {
	return planner.New(planner.Config{
		BaseURL: d.cfg.Backend.BaseURL,
		Timeout: d.cfg.Backend.Timeout,
	}, d.log)
}

// hasKey reports whether any credential source can supply a key.
func (d *deps) hasKey(cmd *cobra.Command) bool {
	if d.cfg.LLM.Provider == llm.ProviderMock {
		return true
	}
	_, err := d.keys.APIKey(cmd.Context())
	return err == nil
}

var errNoInput = errors.New("provide --file or --text")
