// Package client implements the RPC client of a devlock server. It is used by
// the command line to trigger resets and to inspect the lock state of devices.
//
// Key Components:
//
//   - IDeviceClient: Reset (priority tier), TryReset (normal tier with a lock
//     timeout) and Status of a single device.
//
//   - NewRPCDeviceClient: Factory function that connects the given transport
//     and returns a client using the given serializer.
//
// Errors:
//
//	A request that could not be handled at all (transport failure, error
//	response, unexpected message type) returns only an error. A reset that
//	ran but failed returns the result line together with the error.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	    Endpoints:     []string{"localhost:8080"},
//	    TimeoutSecond: 60,
//	    RetryCount:    3,
//	}
//
//	c, err := client.NewRPCDeviceClient(config, http.NewHttpClientTransport(), serializer.NewJSONSerializer())
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	result, err := c.Reset("XBOX")
//
// Thread Safety:
//
//	The client is safe for concurrent use if the transport is.
package client
