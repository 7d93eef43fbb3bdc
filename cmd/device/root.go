package device

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/devlock/cmd/util"
	"github.com/ValentinKolb/devlock/rpc/client"
	"github.com/spf13/cobra"
)

var (
	deviceClient client.IDeviceClient
	tryResetWait time.Duration

	// DeviceCommands represents the device command group
	DeviceCommands = &cobra.Command{
		Use:                "device",
		Short:              "Reset devices and inspect their locks",
		PersistentPreRunE:  setupDeviceClient,
		PersistentPostRunE: closeDeviceClient,
	}

	// resetCmd represents the reset command
	resetCmd = &cobra.Command{
		Use:   "reset [device]",
		Short: "Reset a device with high priority",
		Long:  "Reset a device with high priority. The reset waits for a running priority reset of the device and blocks all other access until it is done.",
		Args:  cobra.ExactArgs(1),
		RunE:  runReset,
	}

	// tryResetCmd represents the try-reset command
	tryResetCmd = &cobra.Command{
		Use:   "try-reset [device]",
		Short: "Reset a device if its lock is free in time",
		Long:  "Reset a device with normal access. The reset is skipped if the device lock cannot be taken within --wait or a priority reset is running.",
		Args:  cobra.ExactArgs(1),
		RunE:  runTryReset,
	}

	// statusCmd represents the status command
	statusCmd = &cobra.Command{
		Use:   "status [device]",
		Short: "Show the lock state of a device",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatus,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add subcommands to device command
	DeviceCommands.AddCommand(resetCmd)
	DeviceCommands.AddCommand(tryResetCmd)
	DeviceCommands.AddCommand(statusCmd)

	// Add common RPC flags to the device command
	util.SetupRPCClientFlags(DeviceCommands)

	// Add flags specific to try-reset
	tryResetCmd.Flags().DurationVar(&tryResetWait, "wait", 5*time.Second, "Maximum time to wait for the device lock")
}

// setupDeviceClient initializes the device client
func setupDeviceClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetClientTransport()
	if err != nil {
		return err
	}

	deviceClient, err = client.NewRPCDeviceClient(*config, t, s)
	return err
}

func closeDeviceClient(_ *cobra.Command, _ []string) error {
	return deviceClient.Close()
}

// runReset handles the reset command
func runReset(_ *cobra.Command, args []string) error {
	result, err := deviceClient.Reset(args[0])
	if result != "" {
		fmt.Println(result)
	}
	if err != nil {
		return fmt.Errorf("failed to reset device: %w", err)
	}
	return nil
}

// runTryReset handles the try-reset command
func runTryReset(_ *cobra.Command, args []string) error {
	result, err := deviceClient.TryReset(args[0], tryResetWait)
	if result != "" {
		fmt.Println(result)
	}
	if err != nil {
		return fmt.Errorf("failed to reset device: %w", err)
	}
	return nil
}

// runStatus handles the status command
func runStatus(_ *cobra.Command, args []string) error {
	status, err := deviceClient.Status(args[0])
	if err != nil {
		return fmt.Errorf("failed to get device status: %w", err)
	}
	fmt.Println(status)
	return nil
}
