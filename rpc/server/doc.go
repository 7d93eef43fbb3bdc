// Package server implements the devlock RPC server. The server owns the
// process wide device lock registry and everything that uses it: the poller
// resetting devices periodically with normal access, and the reset requests
// arriving over the transport.
//
// Key Components:
//
//   - NewRPCServer: Creates a server from a ServerConfig, a transport and a
//     serializer. Serve runs it until SIGINT or SIGTERM, Run until a context
//     is done.
//
//   - IRPCServerAdapter: Turns a decoded request for a device into a response.
//     NewDeviceServerAdapter serves priority resets (optionally rate limited),
//     timed resets and lock status requests.
//
// Endpoints:
//
//	Besides the RPC transport the server exposes, on the metrics endpoint:
//
//	- GET /metrics       lock registry counters in prometheus text format
//	- GET /stats         reset timings and poll counters as json
//	- /debug/pprof/      runtime profiling
//
// Usage Example:
//
//	s := server.NewRPCServer(
//	    common.ServerConfig{
//	        Endpoint:        "0.0.0.0:8080",
//	        MetricsEndpoint: "0.0.0.0:9100",
//	        Devices:         []string{"LENOVO", "IPHONE", "XBOX"},
//	        PollInterval:    10 * time.Second,
//	        PollLockTimeout: 5 * time.Second,
//	        ResetDuration:   time.Second,
//	        LogLevel:        "info",
//	    },
//	    http.NewHttpServerTransport(),
//	    serializer.NewJSONSerializer(),
//	)
//	if err := s.Serve(); err != nil {
//	    log.Fatal(err)
//	}
package server
