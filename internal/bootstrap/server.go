package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Domenick1991/hotelbooking/api"
	"github.com/Domenick1991/hotelbooking/config"
	"github.com/Domenick1991/hotelbooking/internal/api/middleware"
	"github.com/Domenick1991/hotelbooking/internal/pkg/logger"
	"github.com/Domenick1991/hotelbooking/internal/pkg/metrics"
	"github.com/Domenick1991/hotelbooking/internal/service/reservation"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/encoding/protojson"
)

// ServiceName is the name reported by the gRPC health service.
const ServiceName = "reservation.v1.ReservationService"

const swaggerDoc = "reservations.swagger.json"

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
}

// Run starts the gRPC (health, reflection) and HTTP servers and blocks until
// ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, reservationSvc reservation.ReservationUseCase, m *metrics.Metrics) error {
	s, err := newServers(cfg, reservationSvc, m)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("servers started",
		zap.String("http", cfg.HTTP.Address),
		zap.String("grpc", cfg.GRPC.Address),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("servers stopped")
		return nil
	}
}

func newServers(cfg *config.Config, reservationSvc reservation.ReservationUseCase, m *metrics.Metrics) (*Servers, error) {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	router, err := NewRouter(cfg, reservationSvc, m, healthSrv)
	if err != nil {
		return nil, err
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
		health:     healthSrv,
	}, nil
}

// NewRouter wires the reservation routes, /healthz, /metrics and, when a
// swagger dir is configured, the API docs.
func NewRouter(cfg *config.Config, reservationSvc reservation.ReservationUseCase, m *metrics.Metrics, hs healthpb.HealthServer) (*gin.Engine, error) {
	router := gin.New()
	middleware.Setup(router, m)

	api.NewReservationHandler(reservationSvc).Register(router.Group("/reservation"))
	router.NoRoute(api.NoRoute)

	gw := runtime.NewServeMux()
	if err := gw.HandlePath(http.MethodGet, "/healthz", healthHandler(hs)); err != nil {
		return nil, fmt.Errorf("register health gateway: %w", err)
	}
	router.GET("/healthz", gin.WrapH(gw))

	if m != nil {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFile("/docs/"+swaggerDoc, filepath.Join(cfg.HTTP.SwaggerDir, swaggerDoc))
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/"+swaggerDoc))))
	}

	return router, nil
}

func healthHandler(hs healthpb.HealthServer) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		status := http.StatusOK
		resp, err := hs.Check(r.Context(), &healthpb.HealthCheckRequest{Service: ServiceName})
		if err != nil || resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			status = http.StatusServiceUnavailable
		}
		if resp == nil {
			resp = &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}
		}

		body, err := protojson.Marshal(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
}
