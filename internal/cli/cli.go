package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/buildinfo"
	"github.com/matzehuels/masonry/pkg/feed"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "masonry"

	// defaultDemoItems is how many generated items commands use without a feed.
	defaultDemoItems = 24
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag shared by every command.
	configPath string
}

// New creates a new CLI instance logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Masonry lays out variably sized items in columns",
		Long: `Masonry places a stream of variably sized items into a multi-column grid,
shortest column first, with whitespace-minimizing placement of items that span
several columns.

It can lay out a feed file once, browse a feed interactively in the terminal,
or serve layouts over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "grid config file (TOML)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or returns the defaults without one.
func (c *CLI) loadConfig() (*feed.Config, error) {
	if c.configPath == "" {
		return feed.DefaultConfig(), nil
	}
	cfg, err := feed.LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath)
	return cfg, nil
}

// loadItems reads the feed at path, or generates demo items when path is
// empty.
func loadItems(path string, n int, seed int64) ([]*feed.Item, error) {
	if path == "" {
		return feed.Generate(n, seed), nil
	}
	f, err := feed.Load(path)
	if err != nil {
		return nil, err
	}
	return f.Items, nil
}

