// Package common provides the data structures and utilities shared by the
// RPC client and server of devlock.
//
// The package focuses on:
//   - Message protocol definition for client/server communication
//   - Configuration structures for client and server components
//   - Custom logging implementation integrated with Dragonboat's logger
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication. Which fields are
//     used depends on the message type. Includes factory methods for creating
//     the request and response messages.
//
//   - MessageType: Enumeration of all supported operations (priority reset,
//     timed reset, lock status) plus control messages.
//
//   - ServerConfig: Configuration of the server, including the polled devices,
//     the simulated reset and the network endpoints.
//
//   - ClientConfig: Configuration for client components, controlling endpoints,
//     timeouts and retry behavior.
//
//   - Logger: Custom logger factory for Dragonboat's logging facade providing
//     consistent formatting across the application.
package common
