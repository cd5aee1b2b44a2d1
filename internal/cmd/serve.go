package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"leadlist-tui/internal/logging"
	"leadlist-tui/internal/rpc"
	"leadlist-tui/internal/source"
)

const shutdownTimeout = 5 * time.Second

func init() {
	serveCmd.Flags().String("listen", "", "Address to listen on")
	serveCmd.Flags().String("name", "", "Node name reported to clients")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generated leads as JSON-RPC over a websocket",
	Example: `
# Serve 1 million leads, withholding the total until the last page
LEADLIST_TOTAL=1000000 leadlist serve --listen :9000
  `,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Serve.Listen = listen
	}
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		cfg.Serve.Name = name
	}

	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	synthetic := source.NewSynthetic(cfg.SyntheticConfig())
	var total func() *int
	if !cfg.Synthetic.HideTotal {
		n := synthetic.Total()
		total = func() *int { return &n }
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Serve.Path, rpc.NewServer(cfg.Serve.Name, synthetic, total))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	listener, err := net.Listen("tcp", cfg.Serve.Listen)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "serving %d leads on ws://%s%s\n", synthetic.Total(), listener.Addr(), cfg.Serve.Path)
	log.Info("serving", "addr", listener.Addr().String(), "path", cfg.Serve.Path, "total", synthetic.Total())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(listener) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
