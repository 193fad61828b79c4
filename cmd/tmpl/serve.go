package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/awantoch/contentkit/constants"
	api "github.com/awantoch/contentkit/http"
	"github.com/awantoch/contentkit/telemetry"
	"github.com/awantoch/contentkit/templater"
	"github.com/awantoch/contentkit/utils"
)

// newServeCmd creates the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   constants.CmdServe,
		Short: constants.DescServe,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig()
			if err != nil {
				utils.Error("Failed to load config: %v", err)
				exit(constants.ExitConfig)
				return
			}
			if addr != "" {
				host, port, err := splitAddr(addr)
				if err != nil {
					utils.Error("invalid --addr %q: %v", addr, err)
					exit(constants.ExitBadInput)
					return
				}
				cfg.HTTP.Host, cfg.HTTP.Port = host, port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdown, err := telemetry.Init(ctx, cfg)
			if err != nil {
				utils.Error("Failed to initialize tracing: %v", err)
				exit(constants.ExitConfig)
				return
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					utils.Warn("tracer shutdown: %v", err)
				}
			}()

			env, err := templater.NewEnvironmentFromConfig(ctx, cfg.Templates)
			if err != nil {
				utils.Error("Failed to create template environment: %v", err)
				exit(constants.ExitConfig)
				return
			}
			utils.Info("serving templates from %v", env.SearchPath())
			if err := api.StartServer(ctx, cfg, env); err != nil {
				utils.Error("server error: %v", err)
				exit(constants.ExitBadInput)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address host:port (overrides config file)")
	return cmd
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}
