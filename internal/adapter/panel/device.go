package panel

import (
	"context"

	"github.com/nerrad567/dab-broker/internal/dab"
	"github.com/nerrad567/dab-broker/internal/jsonvalue"
)

func (i *Instance) handleDeviceInfo(jsonvalue.Value) (jsonvalue.Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	var sysInfo struct {
		Version string `json:"version"`
		UpTime  string `json:"uptime"`
	}
	if err := i.client.call(ctx, "DeviceInfo.1.systeminfo", nil, &sysInfo); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "device info unavailable: "+err.Error())
	}

	var devID struct {
		DeviceID  string `json:"deviceID"`
		Make      string `json:"make"`
		ModelName string `json:"modelName"`
	}
	// deviceidentification is a separate plugin; its absence shouldn't fail
	// the whole call, only leave those fields empty.
	_ = i.client.call(ctx, "DeviceIdentification.1.deviceidentification", nil, &devID)

	return jsonvalue.Obj(
		jsonvalue.Kv("deviceId", jsonvalue.Str(i.deviceID)),
		jsonvalue.Kv("manufacturer", jsonvalue.Str(devID.Make)),
		jsonvalue.Kv("model", jsonvalue.Str(devID.ModelName)),
		jsonvalue.Kv("serialNumber", jsonvalue.Str(devID.DeviceID)),
		jsonvalue.Kv("firmwareVersion", jsonvalue.Str(sysInfo.Version)),
		jsonvalue.Kv("uptime", jsonvalue.Str(sysInfo.UpTime)),
	), nil
}

func (i *Instance) handleSystemRestart(jsonvalue.Value) (jsonvalue.Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	if err := i.client.call(ctx, "org.rdk.System.1.reboot", nil, nil); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "restart failed: "+err.Error())
	}
	return jsonvalue.Obj(), nil
}

func (i *Instance) handleHealthCheckGet(jsonvalue.Value) (jsonvalue.Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	if err := i.client.call(ctx, "Controller.1.status", nil, nil); err != nil {
		return jsonvalue.Obj(jsonvalue.Kv("healthy", jsonvalue.Bool(false))), nil
	}
	return jsonvalue.Obj(jsonvalue.Kv("healthy", jsonvalue.Bool(true))), nil
}

func (i *Instance) handleDiscovery(jsonvalue.Value) (jsonvalue.Value, error) {
	return jsonvalue.Obj(
		jsonvalue.Kv("deviceId", jsonvalue.Str(i.deviceID)),
		jsonvalue.Kv("ip", jsonvalue.Str("")),
	), nil
}

func (i *Instance) handleVersion(jsonvalue.Value) (jsonvalue.Value, error) {
	return jsonvalue.Obj(
		jsonvalue.Kv("versions", jsonvalue.Arr(jsonvalue.Str("2.0"))),
	), nil
}
