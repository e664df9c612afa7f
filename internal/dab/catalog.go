package dab

// Operation is the tail of a request topic after dab/<deviceId>/, e.g.
// "device/info" or "application/launch-with-content". Catalog below fixes
// the normative set; a broker built on this package is free to register
// implementations that support any subset of it, or operations outside it
// (the set is open).
type Operation string

const (
	OpOperations = Operation("operations")

	OpDeviceInfo           = Operation("device/info")
	OpDeviceTelemetryStart = Operation("device/telemetry/start")
	OpDeviceTelemetryStop  = Operation("device/telemetry/stop")

	OpApplicationList              = Operation("application/list")
	OpApplicationLaunch             = Operation("application/launch")
	OpApplicationLaunchWithContent  = Operation("application/launch-with-content")
	OpApplicationGetState           = Operation("application/get-state")
	OpApplicationExit               = Operation("application/exit")
	OpApplicationTelemetryStart     = Operation("application/telemetry/start")
	OpApplicationTelemetryStop      = Operation("application/telemetry/stop")

	OpSystemRestart      = Operation("system/restart")
	OpSystemSettingsList = Operation("system/settings/list")
	OpSystemSettingsGet  = Operation("system/settings/get")
	OpSystemSettingsSet  = Operation("system/settings/set")

	OpInputKeyList      = Operation("input/key/list")
	OpInputKeyPress     = Operation("input/key/press")
	OpInputKeyLongPress = Operation("input/key/long-press")

	OpOutputImage = Operation("output/image")

	OpHealthCheckGet = Operation("health-check/get")

	OpVoiceList      = Operation("voice/list")
	OpVoiceSet       = Operation("voice/set")
	OpVoiceSendAudio = Operation("voice/send-audio")
	OpVoiceSendText  = Operation("voice/send-text")

	// OpDiscovery is addressed both per-device, as dab/<deviceId>/discovery
	// routed to the owning Instance's handler, and bridge-wide, on the
	// fixed topic "dab/discovery" with no deviceId segment, mirroring
	// original_source/dabClient.h's separate discovery topic registration.
	// The bridge-wide form has no instance to route to and is answered
	// directly by the Dispatcher.
	OpDiscovery = Operation("discovery")

	// OpVersion is not part of the normative catalog but is supported by
	// every instance in the source (original_source/dabClient.h's METHODS
	// table includes a fixed version() entry with no payload).
	OpVersion = Operation("version")
)

// Catalog lists every normative operation plus the supplemented version
// and discovery entries, in declaration order. It is the universe the
// Introspector probes against.
var Catalog = []Operation{
	OpOperations,
	OpDeviceInfo,
	OpDeviceTelemetryStart,
	OpDeviceTelemetryStop,
	OpApplicationList,
	OpApplicationLaunch,
	OpApplicationLaunchWithContent,
	OpApplicationGetState,
	OpApplicationExit,
	OpApplicationTelemetryStart,
	OpApplicationTelemetryStop,
	OpSystemRestart,
	OpSystemSettingsList,
	OpSystemSettingsGet,
	OpSystemSettingsSet,
	OpInputKeyList,
	OpInputKeyPress,
	OpInputKeyLongPress,
	OpOutputImage,
	OpHealthCheckGet,
	OpVoiceList,
	OpVoiceSet,
	OpVoiceSendAudio,
	OpVoiceSendText,
	OpDiscovery,
	OpVersion,
}
