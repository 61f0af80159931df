package cli

import (
	"context"

	"github.com/justestif/spotify-history-warehouse/internal/db"
	"github.com/justestif/spotify-history-warehouse/internal/web"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	ctx := context.Background()
	cfg, sink, err := c.globals.setup(ctx)
	if err != nil {
		return err
	}
	defer sink.Close()

	addr := c.Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := web.NewServer(web.ServerConfig{
		Addr:            addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, db.NewWarehouse(sink))
	return srv.Run(ctx)
}
