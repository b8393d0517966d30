package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"

	"github.com/adambasile/jobmatcher/internal/secrets"
	"github.com/adambasile/jobmatcher/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   commandServe,
	Short: "Serve matching over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("address", ":8080", "address to listen on")
	serveCmd.Flags().String("token-file", "", "file with a bearer token required by the API. Default is unset.")

	mustBind("serve.address", serveCmd.Flags().Lookup("address"))
	mustBind("serve.token-file", serveCmd.Flags().Lookup("token-file"))
}

func serve(ctx context.Context) error {
	logger, err := newLogger(commandServe)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		return err
	}
	if err := config.Validate(commandServe); err != nil {
		return err
	}

	token, err := resolveToken(config)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Address: config.Serve.Address,
		Token:   token,
		Format:  config.Format,
		Skills:  config.SkillOptions(),
	}, logger)

	logger.Info("starting the jobmatcher server", zap.String("version", version))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Listen)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// resolveToken returns an empty token when none is configured.
func resolveToken(config *Config) (string, error) {
	token, err := secrets.Optional(secrets.Source{
		Name: "api token",
		File: config.Serve.TokenFile,
		Env:  envPrefix + "_SERVE_TOKEN",
	})
	if err != nil {
		return "", fmt.Errorf("loading api token: %w", err)
	}
	return token, nil
}
