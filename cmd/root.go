package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/devlock/cmd/device"
	"github.com/ValentinKolb/devlock/cmd/serve"
	"github.com/ValentinKolb/devlock/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "devlock",
		Short: "priority locks for device resets",
		Long: fmt.Sprintf(`devlock (v%s)

A lock service for device resets. Devices are polled periodically with normal
access, while a high priority reset triggered over the API blocks every other
access to the device until it is done.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of devlock",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("devlock v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(device.DeviceCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
