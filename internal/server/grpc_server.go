package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/oggyb/matchmaker/internal/app"
	"github.com/oggyb/matchmaker/internal/config"
)

// HealthService is the service name reported by the health server, next
// to the overall "" entry.
const HealthService = "matchmaker"

// GRPCServer exposes the standard health service and reflection for
// orchestrators and grpcurl.
type GRPCServer struct {
	srv    *grpc.Server
	health *health.Server
	addr   string
}

// NewGRPCServer builds the server. Both health entries start NOT_SERVING
// until the first probe succeeds.
func NewGRPCServer(cfg *config.Config) *GRPCServer {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	// enable reflection for easier debugging with grpcurl
	reflection.Register(srv)

	g := &GRPCServer{srv: srv, health: hs, addr: fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)}
	g.SetServing(false)
	return g
}

// SetServing flips both health entries.
func (g *GRPCServer) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(HealthService, status)
}

// Serve listens on GRPC_HOST:GRPC_PORT.
func (g *GRPCServer) Serve() error {
	lis, err := net.Listen("tcp", g.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", g.addr, err)
	}
	return g.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (g *GRPCServer) ServeListener(lis net.Listener) error {
	return g.srv.Serve(lis)
}

// Stop marks the server as shutting down and drains in-flight calls.
func (g *GRPCServer) Stop() {
	g.health.Shutdown()
	g.srv.GracefulStop()
}

// WatchHealth probes storage every interval and publishes the result until
// ctx is done.
func (g *GRPCServer) WatchHealth(ctx context.Context, appCtx *app.AppContext, interval time.Duration) {
	check := func() {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		err := Probe(probeCtx, appCtx)
		if err != nil {
			appCtx.Logger.Warn("health probe failed", "err", err)
		}
		g.SetServing(err == nil)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

// Probe pings the database and Redis.
func Probe(ctx context.Context, appCtx *app.AppContext) error {
	sqlDB, err := appCtx.DB.DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	if appCtx.RedisCache != nil {
		if err := appCtx.RedisCache.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}
	return nil
}
