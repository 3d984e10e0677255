package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/metocast/castctl/internal/site"
)

// SiteServe runs the public website until interrupted.
func (r *Runner) SiteServe(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Site.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = r.config.Site.Port
	}

	server, err := site.NewServer(r.client, r.logger)
	if err != nil {
		return err
	}

	return server.Run(ctx, host, port)
}
