package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/juryclean/internal/csvio"
	"github.com/JonMunkholm/juryclean/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the clean API over HTTP",
	Long: `Starts an HTTP server exposing:

  POST /api/clean   clean uploaded CSVs (multipart field "files"); ?format=csv
                    returns the cleaned table instead of JSON
  GET  /api/rules   the active column rules; ?format=yaml for YAML
  GET  /healthz     liveness and clean slot usage

Uploads are cleaned in memory and never stored.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("host", "", "interface to bind to")
	f.IntP("port", "p", 0, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	overrideString(cmd, "host", &cfg.Server.Host)
	overrideInt(cmd, "port", &cfg.Server.Port)
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, err := cfg.Clean.Options(logger)
	if err != nil {
		return userError(err)
	}

	server, err := web.NewServer(web.Options{
		Server: cfg.Server,
		Clean:  opts,
		Read:   csvio.Options{DetectHeader: cfg.Input.DetectHeader},
		Write:  csvio.WriteOptions{BOMPrefix: cfg.Output.BOM},
	})
	if err != nil {
		return userError(err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	logger.Info("server stopped")
	return <-errCh
}
