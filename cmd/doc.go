// Package cmd implements the command-line interface of devlock. It provides
// commands for running the server and for triggering resets as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Command for starting and configuring the devlock server
//   - device: Commands for device operations (reset, try-reset, status)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See devlock -help for a list of all commands.
package cmd
