package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/rallyscore/internal/volley/server"
	coregrpc "github.com/msto63/rallyscore/pkg/core/grpc"
	"github.com/msto63/rallyscore/pkg/core/health"
	"github.com/msto63/rallyscore/pkg/core/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC and HTTP/WebSocket server",
	Long: `Starts the scorekeeping server.

Listeners:
  gRPC       rallyscore.v1.RallyService, health and reflection (:9300)
  HTTP       /api/v1/..., /ws (WebSocket) and /healthz (:9380)

Examples:
  rallyscore serve
  rallyscore serve --config configs/rallyscore.toml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cfg.General.Name)

	svc, st, err := openService(cfg, logger.WithName("match-service"))
	if err != nil {
		return err
	}
	defer st.Close()

	grpcCfg := coregrpc.DefaultServerConfig()
	grpcCfg.Host = cfg.Server.Host
	grpcCfg.Port = cfg.Server.GRPCPort
	grpcCfg.Logger = logger.WithName("grpc")
	grpcServer := coregrpc.NewServer(grpcCfg)
	server.RegisterRallyServer(grpcServer.GRPCServer(), server.NewGRPCService(svc))
	grpcServer.SetServing(server.ServiceName, true)

	registry := health.NewRegistry(cfg.General.Name, version.Platform)
	registry.Register(health.PingCheck("store", st.Ping))
	registry.Register(health.DetailsCheck("matches", svc.Statistics))
	registry.Register(health.TCPCheck("grpc", localAddress(cfg.Server.GRPCPort), 2*time.Second))

	httpServer := server.NewHTTPServer(server.HTTPConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.HTTPPort,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}, svc, registry, logger.WithName("http"))

	if err := grpcServer.StartAsync(); err != nil {
		return fmt.Errorf("failed to start gRPC server: %w", err)
	}
	httpServer.StartAsync()

	fmt.Fprintf(cmd.OutOrStdout(), "rallyscore %s\n", version.Platform)
	fmt.Fprintf(cmd.OutOrStdout(), "  gRPC:      %s\n", cfg.GRPCAddress())
	fmt.Fprintf(cmd.OutOrStdout(), "  HTTP:      http://%s\n", httpServer.Address())
	fmt.Fprintf(cmd.OutOrStdout(), "  WebSocket: ws://%s/ws\n", cfg.HTTPAddress())
	fmt.Fprintf(cmd.OutOrStdout(), "  Database:  %s\n", cfg.Store.Path)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	grpcServer.StopWithTimeout(ctx)
	return nil
}

// localAddress is the loopback address of a port bound on all interfaces
func localAddress(port int) string {
	return net.JoinHostPort("127.0.0.1", fmt.Sprintf("%d", port))
}
