package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/synvisio/pkg/observability"
	"github.com/matzehuels/synvisio/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Clients create a session from a dataset, then count collisions, run the
optimizer and save layouts through it. Sessions are kept in memory by
default; set [sessions] backend = "redis" in the config file to share them
between instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	logger := loggerFromContext(ctx)

	ttl, err := parseDuration(c.config.Sessions.TTL, 0)
	if err != nil {
		return err
	}
	timeout, err := parseDuration(c.config.Server.OptimizeTimeout, 0)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	sessions, err := c.newSessionStore(ctx)
	if err != nil {
		return err
	}
	defer sessions.Close()

	archive, closeArchive, err := c.newArchive(ctx)
	if err != nil {
		return err
	}
	defer closeArchive()

	observability.SetHTTPHooks(observability.NewLogHooks(logger))

	srv := server.New(server.Config{
		Sessions:        sessions,
		Runner:          runner,
		Archive:         archive,
		SessionTTL:      ttl,
		OptimizeTimeout: timeout,
		Logger:          logger,
	})
	start := time.Now()
	err = srv.ListenAndServe(ctx, addr)
	logger.Info("server stopped", "uptime", time.Since(start).Round(time.Second))
	return err
}
