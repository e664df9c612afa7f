package mqtt

import "errors"

// Domain-specific errors for MQTT operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when attempting to publish before Connect
	// has completed or after Disconnect.
	ErrNotConnected = errors.New("mqtt: session not connected")

	// ErrConnectionFailed is returned when the initial CONNECT/CONNACK
	// handshake fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrSubscribeFailed is returned when the broker refuses a subscription
	// with a reason code other than 0 (granted QoS 0) or 1 (granted QoS 1).
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrPublishFailed is returned when writing a PUBLISH packet to the
	// wire fails. This is logged and not retried; the
	// connection-lost path is responsible for tearing the session down.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrInvalidTopic is returned when an empty topic is supplied to the
	// session's publish path (Publish logs it rather than returning it).
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")

	// ErrTimeout is returned when writing a PUBLISH packet does not
	// complete within the session's publish timeout.
	ErrTimeout = errors.New("mqtt: operation timed out")
)
