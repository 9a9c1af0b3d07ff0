package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/eadteachers/teachkit/internal/assistant"
	"github.com/eadteachers/teachkit/internal/metrics"
	"github.com/eadteachers/teachkit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			d.cfg.Server.Addr = addr
		}

		p, err := d.provider(cmd)
		if err != nil {
			return err
		}
		m := metrics.New()
		p = m.InstrumentProvider(p)

		sessions, closeSessions, err := sessionStore(cmd, d)
		if err != nil {
			return err
		}
		defer closeSessions()

		srv := server.New(server.Deps{
			Generator:   d.generator(p),
			Grader:      d.grader(p),
			Teacher:     d.assistant(assistant.Teacher, p),
			Student:     d.assistant(assistant.Student, p),
			Planner:     d.planner(),
			Credentials: d.credentials,
			Sessions:    sessions,
			Metrics:     m,
			Log:         d.log,
		}, d.cfg.Server)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

// sessionStore picks Redis when redis.addr is configured and memory
// otherwise.
func sessionStore(cmd *cobra.Command, d *deps) (server.SessionStore, func(), error) {
	rc := d.cfg.Redis
	if rc.Addr == "" {
		d.log.Info("using in-memory session store", "ttl", rc.TTL)
		return server.NewMemoryStore(rc.TTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	s := server.NewRedisStore(client, rc.TTL)
	if err := s.Ping(cmd.Context()); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", rc.Addr, err)
	}
	d.log.Info("using redis session store", "addr", rc.Addr, "ttl", rc.TTL)
	return s, func() { _ = client.Close() }, nil
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
