// Package transport defines the interfaces for RPC communication between the
// devlock CLI and a running devlock server. Implementations only move opaque
// byte slices, encoding is left to the serializer package.
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and routes them to the registered handler.
//
//   - ServerHandleFunc: Function type for request handling callbacks. Every
//     request is addressed to a single device.
package transport
