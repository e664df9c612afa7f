package panel

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/dab-broker/internal/dab"
	"github.com/nerrad567/dab-broker/internal/infrastructure/influxdb"
	"github.com/nerrad567/dab-broker/internal/infrastructure/logging"
)

const defaultProbeTimeout = 2 * time.Second

// Implementation is the dab.Implementation for panel/STB-class devices
// fronted by a Thunder/RDK JSON-RPC endpoint.
type Implementation struct {
	probeTimeout time.Duration
	influx       *influxdb.Client
	logger       *logging.Logger
}

// New constructs an Implementation. influx may be nil, in which case
// telemetry handlers still run but never write samples anywhere.
func New(logger *logging.Logger, influx *influxdb.Client) *Implementation {
	return &Implementation{
		probeTimeout: defaultProbeTimeout,
		influx:       influx,
		logger:       logger,
	}
}

// IsCompatible probes deviceAddress with a single short-timeout RDK call,
// mirroring rdkAdapter.h's isCompatible (which probes getDeviceInfo). A
// device answers if the HTTP round trip succeeds and returns a well-formed
// JSON-RPC envelope, regardless of whether that particular call itself
// errors at the RDK layer — reachability of the endpoint is what matters.
func (impl *Implementation) IsCompatible(deviceAddress string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), impl.probeTimeout)
	defer cancel()

	client := newRPCClient(deviceAddress)
	err := client.call(ctx, "DeviceInfo.1.systeminfo", nil, nil)
	if err == nil {
		return true
	}
	// A well-formed JSON-RPC error response still proves the endpoint is a
	// Thunder service; only a transport-level failure disqualifies it.
	_, isRPCError := err.(*RPCError)
	return isRPCError
}

// New constructs the bound Instance for deviceID/deviceAddress.
func (impl *Implementation) New(deviceID, deviceAddress string) dab.Instance {
	return &Instance{
		deviceID:  deviceID,
		client:    newRPCClient(deviceAddress),
		logger:    impl.logger,
		influx:    impl.influx,
		telemetry: newTelemetryScheduler(),
	}
}

// Instance is the device-bound handler object for one panel device.
type Instance struct {
	deviceID string
	client   rpcCaller
	logger   *logging.Logger
	influx   *influxdb.Client

	telemetry *telemetryScheduler

	mu  sync.Mutex
	pub dab.Publisher
}

// SetPublisher wires pub into both the instance (for handlers that publish
// directly, e.g. none currently) and the telemetry scheduler.
func (i *Instance) SetPublisher(pub dab.Publisher) {
	i.mu.Lock()
	i.pub = pub
	i.mu.Unlock()
	i.telemetry.setPublisher(pub)
}

// Handlers returns the operation table this instance answers.
func (i *Instance) Handlers() map[dab.Operation]dab.HandlerFunc {
	return map[dab.Operation]dab.HandlerFunc{
		dab.OpDeviceInfo:                   i.handleDeviceInfo,
		dab.OpSystemRestart:                i.handleSystemRestart,
		dab.OpSystemSettingsList:           i.handleSystemSettingsList,
		dab.OpSystemSettingsGet:            i.handleSystemSettingsGet,
		dab.OpSystemSettingsSet:            i.handleSystemSettingsSet,
		dab.OpApplicationList:              i.handleApplicationList,
		dab.OpApplicationLaunch:            i.handleApplicationLaunch,
		dab.OpApplicationLaunchWithContent: i.handleApplicationLaunchWithContent,
		dab.OpApplicationGetState:          i.handleApplicationGetState,
		dab.OpApplicationExit:              i.handleApplicationExit,
		dab.OpDeviceTelemetryStart:         i.handleDeviceTelemetryStart,
		dab.OpDeviceTelemetryStop:          i.handleDeviceTelemetryStop,
		dab.OpApplicationTelemetryStart:    i.handleApplicationTelemetryStart,
		dab.OpApplicationTelemetryStop:     i.handleApplicationTelemetryStop,
		dab.OpInputKeyList:                 i.handleInputKeyList,
		dab.OpInputKeyPress:                i.handleInputKeyPress,
		dab.OpInputKeyLongPress:            i.handleInputKeyLongPress,
		dab.OpOutputImage:                  i.handleOutputImage,
		dab.OpHealthCheckGet:               i.handleHealthCheckGet,
		dab.OpVoiceList:                    i.handleVoiceList,
		dab.OpVoiceSet:                     i.handleVoiceSet,
		dab.OpVoiceSendAudio:               i.handleVoiceSendAudio,
		dab.OpVoiceSendText:                i.handleVoiceSendText,
		dab.OpDiscovery:                    i.handleDiscovery,
		dab.OpVersion:                      i.handleVersion,
	}
}
