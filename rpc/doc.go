// Package rpc provides the remote procedure call layer of devlock. It connects
// the command line client with a running server that owns the device locks.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with an HTTP implementation.
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: RPC client that triggers resets and queries lock states.
//
//   - server: RPC server that owns the lock registry, runs the poller and
//     dispatches reset and status requests.
package rpc
