// Package panel implements the reference DAB device.Implementation: a
// panel/STB-class device fronted by a local Thunder/RDK JSON-RPC service.
//
// A device of this class answers JSON-RPC 2.0 over HTTP on
// http://<deviceAddress>/jsonrpc, with one callsign per RDK plugin
// (DeviceInfo, DeviceIdentification, org.rdk.RDKShell, org.rdk.System,
// org.rdk.VoiceControl, org.rdk.ScreenCapture, ...). Implementation.IsCompatible
// probes this endpoint; Implementation.New binds an Instance to it.
//
// Device and application telemetry are driven by a small per-instance
// scheduler (telemetry.go) rather than RDK itself — the panel has no native
// push-telemetry concept, so polling on an interval and publishing through
// the bound Publisher is this package's own addition.
package panel
