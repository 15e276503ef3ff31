package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/internal/server"
	"github.com/matzehuels/masonry/pkg/cache"
)

// serveCommand creates the serve command for the HTTP layout service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		maxItems  int
		cacheSize int
		cacheTTL  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

POST /v1/layout takes {"width": ..., "items": [...]} and returns item
positions. GET /v1/demo lays out generated items. The grid config given with
--config provides the defaults each request may override.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, maxItems, newLayoutCache(cacheSize), cacheTTL)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().IntVar(&maxItems, "max-items", server.DefaultMaxItems, "maximum items per request")
	cmd.Flags().IntVar(&cacheSize, "cache-size", cache.DefaultMaxEntries, "layouts kept in memory (0 disables the cache)")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 10*time.Minute, "how long a cached layout is served")

	return cmd
}

// newLayoutCache returns an in-memory layout cache, or a null cache for size 0.
func newLayoutCache(size int) cache.Cache {
	if size <= 0 {
		return cache.NewNullCache()
	}
	return cache.NewMemoryCache(size)
}

func (c *CLI) runServe(ctx context.Context, addr string, maxItems int, layouts cache.Cache, ttl time.Duration) error {
	defer layouts.Close()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	srv := server.New(server.Config{
		Grid:     cfg.Grid,
		Logger:   loggerFromContext(ctx).WithPrefix("http"),
		MaxItems: maxItems,
		Cache:    layouts,
		CacheTTL: ttl,
	})
	return srv.ListenAndServe(ctx, addr)
}
