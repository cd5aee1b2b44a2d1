package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"leadlist-tui/internal/config"
	"leadlist-tui/internal/logging"
	"leadlist-tui/internal/rpc"
	"leadlist-tui/internal/source"
	"leadlist-tui/internal/ui"
	"leadlist-tui/pkg/types"
)

func init() {
	persistent := rootCmd.PersistentFlags()
	persistent.StringP("config", "c", "", "Config file (default leadlist.json when present)")
	persistent.String("env-file", config.DefaultEnvFile, "File with LEADLIST_* overrides")
	persistent.BoolP("debug", "d", false, "Debug logging")
	persistent.String("log-file", "", "Log file")
	persistent.Int("total", 0, "Number of generated leads")
	persistent.Uint64("seed", 0, "Seed of the generated leads")

	flags := rootCmd.Flags()
	flags.String("source", "", "Data source: synthetic or remote")
	flags.StringSlice("node", nil, "Websocket URL of a page server, repeatable")
	flags.Int("page-size", 0, "Leads per page")
	flags.String("sort", "", "Initial order: name, score or last_visit")
	flags.Bool("alt-screen", true, "Use the alternate screen")

	rootCmd.AddCommand(serveCmd)
}

var rootCmd = &cobra.Command{
	Use:   "leadlist",
	Short: "Browse an endless list of leads in the terminal",
	Long: `Leadlist renders a large, incrementally loaded list of leads. Only the rows
near the viewport are drawn and the next page is fetched as the end comes into
view. Leads come from a generated data set or from remote page servers.`,
	Example: `
# Browse 5000 generated leads
leadlist

# Browse a bigger data set with debug logging
leadlist --total 100000 -d

# Read pages from two servers with failover
leadlist --source remote --node ws://localhost:8080/rpc --node ws://backup:8080/rpc

# Serve generated leads to remote clients
leadlist serve --listen :8080
  `,
	SilenceUsage: true,
	RunE:         runList,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges file, environment and flags and validates the result
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	cfg, err := config.Load(path, envFile)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("source") {
		cfg.Source, _ = flags.GetString("source")
	}
	if changed("node") {
		cfg.Nodes, _ = flags.GetStringSlice("node")
	}
	if changed("total") {
		cfg.Synthetic.Total, _ = flags.GetInt("total")
	}
	if changed("seed") {
		cfg.Synthetic.Seed, _ = flags.GetUint64("seed")
	}
	if changed("page-size") {
		cfg.Loader.PageSize, _ = flags.GetInt("page-size")
	}
	if changed("alt-screen") {
		cfg.AltScreen, _ = flags.GetBool("alt-screen")
	}
	if changed("log-file") {
		cfg.Log.File, _ = flags.GetString("log-file")
	}
	if changed("sort") {
		name, _ := flags.GetString("sort")
		sort, err := types.ParseSortKey(name)
		if err != nil {
			return err
		}
		cfg.Loader.Sort = sort
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	var (
		fetcher source.Fetcher
		client  *rpc.Client
	)
	switch cfg.Source {
	case config.SourceRemote:
		client = rpc.NewClient(cfg.Nodes)
		defer client.Close()
		fetcher = client
	default:
		fetcher = source.NewSynthetic(cfg.SyntheticConfig())
	}
	log.Info("starting", "source", cfg.Source, "page_size", cfg.Loader.PageSize)

	loader := source.NewLoader(fetcher, cfg.LoaderConfig())
	defer loader.Close()

	model, err := ui.NewModel(loader, cfg.UIOptions())
	if err != nil {
		return err
	}

	options := []tea.ProgramOption{tea.WithMouseCellMotion(), tea.WithContext(cmd.Context())}
	if cfg.AltScreen {
		options = append(options, tea.WithAltScreen())
	}
	program := tea.NewProgram(model, options...)
	if client != nil {
		client.SetSender(program.Send)
	}

	if _, err := program.Run(); err != nil {
		log.Error("TUI run error", "err", err)
		return fmt.Errorf("run tui: %w", err)
	}
	log.Info("exiting", "loaded", loader.Len(), "stats", loader.Stats())
	return nil
}
