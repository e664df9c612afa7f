package panel

import (
	"errors"
	"fmt"
)

// ErrUnreachable is returned when the RDK endpoint cannot be reached at all
// (connection refused, timeout, DNS failure).
var ErrUnreachable = errors.New("panel: device unreachable")

// RPCError wraps a JSON-RPC error object returned by the RDK endpoint.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("panel: rpc error %d: %s", e.Code, e.Message)
}
