// Package dab implements the Device Application Bridge engine: the
// operation catalog, the per-instance handler introspector, the device
// registry that selects and owns instances, and the topic dispatcher that
// routes an inbound request to a handler and shapes its reply.
//
// None of this package talks to MQTT directly; internal/infrastructure/mqtt
// owns the broker session and calls into a Dispatcher for each inbound
// PUBLISH. Device implementations (internal/adapter/...) satisfy the
// Implementation interface and are registered with a Registry before the
// session connects.
package dab
