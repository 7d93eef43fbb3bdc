package serve

import (
	"fmt"
	"strings"
	"time"

	cmdUtil "github.com/ValentinKolb/devlock/cmd/util"
	"github.com/ValentinKolb/devlock/rpc/common"
	"github.com/ValentinKolb/devlock/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the devlock server",
		Long:    `Start the devlock server with the specified configuration. The server polls the configured devices and accepts reset requests. The configuration can be set via command line flags or environment variables. The format of the environment variables is DEVLOCK_<flag> (e.g. DEVLOCK_POLL_INTERVAL=30s)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:9100", cmdUtil.WrapString("The address serving /metrics, /stats and /debug/pprof (empty to disable)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 0, cmdUtil.WrapString("Maximum time in seconds a reset request may take including the wait for the device (0 for no limit)"))

	key = "devices"
	ServeCmd.PersistentFlags().String(key, "LENOVO,IPHONE,XBOX", cmdUtil.WrapString("Comma-separated list of devices the poller resets periodically (empty to disable polling)"))

	key = "poll-interval"
	ServeCmd.PersistentFlags().Duration(key, 10*time.Second, cmdUtil.WrapString("Time between two polling rounds"))

	key = "poll-timeout"
	ServeCmd.PersistentFlags().Duration(key, 5*time.Second, cmdUtil.WrapString("Maximum time a polling round waits for the lock of a device"))

	key = "reset-duration"
	ServeCmd.PersistentFlags().Duration(key, time.Second, cmdUtil.WrapString("Time a simulated reset takes"))

	key = "slow-devices"
	ServeCmd.PersistentFlags().String(key, "XBOX=30s", cmdUtil.WrapString("Comma-separated list of devices with a custom reset duration. Format: NAME=DURATION"))

	key = "reset-failure-rate"
	ServeCmd.PersistentFlags().Float64(key, 0.5, cmdUtil.WrapString("Probability (0..1) that a simulated reset reports NO OK"))

	key = "reset-rate"
	ServeCmd.PersistentFlags().Float64(key, 0, cmdUtil.WrapString("Maximum number of priority resets per second accepted over the API (0 for no limit)"))

	key = "reset-burst"
	ServeCmd.PersistentFlags().Int(key, 1, cmdUtil.WrapString("Number of priority resets accepted at once when reset-rate is set"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	slow, err := ParseSlowDevices(viper.GetString("slow-devices"))
	if err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Devices = cmdUtil.SplitList(viper.GetString("devices"))
	serveCmdConfig.PollInterval = viper.GetDuration("poll-interval")
	serveCmdConfig.PollLockTimeout = viper.GetDuration("poll-timeout")
	serveCmdConfig.ResetDuration = viper.GetDuration("reset-duration")
	serveCmdConfig.SlowDevices = slow
	serveCmdConfig.ResetFailureRate = viper.GetFloat64("reset-failure-rate")
	serveCmdConfig.ResetRate = viper.GetFloat64("reset-rate")
	serveCmdConfig.ResetBurst = viper.GetInt("reset-burst")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return serveCmdConfig.Validate()
}

// ParseSlowDevices parses a list of the form "XBOX=30s,PS5=10s".
// Device names are case insensitive and stored in upper case.
func ParseSlowDevices(s string) (map[string]time.Duration, error) {
	slow := make(map[string]time.Duration)
	for _, entry := range cmdUtil.SplitList(s) {
		name, value, ok := strings.Cut(entry, "=")
		name = strings.ToUpper(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid slow device format: %s (expected NAME=DURATION)", entry)
		}

		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid reset duration for %s: %w", name, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("negative reset duration for %s: %s", name, d)
		}
		slow[name] = d
	}
	return slow, nil
}

// run starts the devlock server
func run(_ *cobra.Command, _ []string) error {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	return serv.Serve()
}
