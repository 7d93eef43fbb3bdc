package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/devlock/lib/device"
	"github.com/ValentinKolb/devlock/lib/lockmgr"
	"github.com/ValentinKolb/devlock/rpc/common"
	"github.com/ValentinKolb/devlock/rpc/serializer"
	"github.com/ValentinKolb/devlock/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var Logger = logger.GetLogger("rpc")

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	return &rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		metrics:    metrics.NewSet(),
		stats:      gometrics.NewRegistry(),
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer

	// metrics holds the prometheus style lock metrics, stats the reset timings
	metrics *metrics.Set
	stats   gometrics.Registry

	registry lockmgr.IPriorityLockRegistry
	poller   *device.Poller
	adapter  IRPCServerAdapter
}

// Serve starts the RPC server and blocks until SIGINT or SIGTERM is received
// This function will also initialize the server and start the transport layer
func (s *rpcServer) Serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run initializes the server and runs the transport, the poller and the
// metrics endpoint until ctx is done or one of them fails
func (s *rpcServer) Run(ctx context.Context) error {
	if err := s.init(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.transport.Listen(ctx, s.config)
	})

	if len(s.config.Devices) > 0 {
		g.Go(func() error {
			return s.poller.Run(ctx)
		})
	}

	if s.config.MetricsEndpoint != "" {
		g.Go(func() error {
			return s.serveMetrics(ctx)
		})
	}

	err := g.Wait()
	Logger.Infof("devlock server stopped")
	return err
}

// init creates the lock registry and the device collaborators
func (s *rpcServer) init() error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	if err := common.InitLoggers(s.config); err != nil {
		return err
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(s.config.String())

	s.registry = lockmgr.NewRegistry(s.metrics)

	resetter := device.NewFakeResetter(device.FakeResetConfig{
		Default:     s.config.ResetDuration,
		SlowDevices: s.config.SlowDevices,
		FailureRate: s.config.ResetFailureRate,
	}, s.stats)
	coordinator := device.NewCoordinator(s.registry, resetter)

	s.poller = device.NewPoller(coordinator, device.PollerConfig{
		Devices:     s.config.Devices,
		Interval:    s.config.PollInterval,
		LockTimeout: s.config.PollLockTimeout,
	}, s.stats)

	var limiter *rate.Limiter
	if s.config.ResetRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.config.ResetRate), max(1, s.config.ResetBurst))
	}
	s.adapter = NewDeviceServerAdapter(s.registry, coordinator, limiter)

	s.registerTransportHandler()

	Logger.Infof("devlock setup completed successfully")
	return nil
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(s.handle)
}

// handle decodes a request, lets the adapter handle it and encodes the response.
// The adapter runs under ctx, limited by the request timeout if one is set.
func (s *rpcServer) handle(ctx context.Context, device string, req []byte) []byte {
	var msg common.Message
	var respMsg *common.Message

	if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	} else {
		if s.config.TimeoutSecond > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.TimeoutSecond)*time.Second)
			defer cancel()
		}
		respMsg = s.adapter.Handle(ctx, device, &msg)
	}

	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
	}
	return val
}

// --------------------------------------------------------------------------
// Metrics endpoint
// --------------------------------------------------------------------------

// metricsMux serves the lock metrics in prometheus format, the reset timings as
// json and the pprof handlers
func (s *rpcServer) metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.WritePrometheus(w)
		metrics.WriteProcessMetrics(w)
	})
	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		gometrics.WriteJSONOnce(s.stats, w)
	})
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func (s *rpcServer) serveMetrics(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.MetricsEndpoint,
		Handler: s.metricsMux(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	Logger.Infof("Starting metrics server on %s", s.config.MetricsEndpoint)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
