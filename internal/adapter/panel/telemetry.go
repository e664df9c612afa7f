package panel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/dab-broker/internal/dab"
	"github.com/nerrad567/dab-broker/internal/jsonvalue"
)

// telemetryScheduler is a goroutine-per-active-schedule replacement for
// dabClient.h's telemetryScheduler map + single worker thread + condition
// variable: each addTelemetry gets its own ticker goroutine instead of a
// shared structure threaded through a mutex and wait_until, which is the
// more idiomatic Go shape for "N independent recurring publishes."
type telemetryScheduler struct {
	mu      sync.Mutex
	pub     dab.Publisher
	entries map[string]*telemetryEntry
}

type telemetryEntry struct {
	stop chan struct{}
}

func newTelemetryScheduler() *telemetryScheduler {
	return &telemetryScheduler{entries: make(map[string]*telemetryEntry)}
}

func (s *telemetryScheduler) setPublisher(pub dab.Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pub = pub
}

// start begins (or reschedules) recurring telemetry keyed by id, publishing
// getter()'s result to topic every interval — and once immediately, mirroring
// addTelemetry's "schedule for NOW so we send one immediately."
func (s *telemetryScheduler) start(id, topic string, interval time.Duration, getter func() jsonvalue.Value) {
	s.mu.Lock()
	if e, ok := s.entries[id]; ok {
		close(e.stop)
	}
	e := &telemetryEntry{stop: make(chan struct{})}
	s.entries[id] = e
	s.mu.Unlock()

	go s.run(e, topic, interval, getter)
}

func (s *telemetryScheduler) run(e *telemetryEntry, topic string, interval time.Duration, getter func() jsonvalue.Value) {
	s.publish(topic, getter)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			s.publish(topic, getter)
		}
	}
}

func (s *telemetryScheduler) publish(topic string, getter func() jsonvalue.Value) {
	s.mu.Lock()
	pub := s.pub
	s.mu.Unlock()
	if pub == nil {
		return
	}
	pub(topic, getter())
}

// stop cancels a previously started schedule; a no-op if id is unknown,
// matching deleteTelemetry's no-op-if-absent behavior.
func (s *telemetryScheduler) stop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return
	}
	close(e.stop)
	delete(s.entries, id)
}

func durationFromPayload(payload jsonvalue.Value) (time.Duration, int64, error) {
	durVal, ok := payload.Get("duration")
	if !ok {
		return 0, 0, dab.NewException(400, "missing parameter \"duration\"")
	}
	ms, err := durVal.Number()
	if err != nil || ms <= 0 {
		return 0, 0, dab.NewException(400, "duration must be a positive number of milliseconds")
	}
	return time.Duration(ms) * time.Millisecond, int64(ms), nil
}

func (i *Instance) handleDeviceTelemetryStart(payload jsonvalue.Value) (jsonvalue.Value, error) {
	interval, ms, err := durationFromPayload(payload)
	if err != nil {
		return jsonvalue.Value{}, err
	}

	topic := fmt.Sprintf("dab/%s/device-telemetry/metrics", i.deviceID)
	i.telemetry.start("device", topic, interval, i.collectDeviceMetrics)
	return jsonvalue.Obj(jsonvalue.Kv("duration", jsonvalue.Int(ms))), nil
}

func (i *Instance) handleDeviceTelemetryStop(jsonvalue.Value) (jsonvalue.Value, error) {
	i.telemetry.stop("device")
	return jsonvalue.Obj(), nil
}

func (i *Instance) handleApplicationTelemetryStart(payload jsonvalue.Value) (jsonvalue.Value, error) {
	appID, err := requireString(payload, "appId")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	interval, ms, err := durationFromPayload(payload)
	if err != nil {
		return jsonvalue.Value{}, err
	}

	topic := fmt.Sprintf("dab/%s/app-telemetry/metrics/%s", i.deviceID, appID)
	i.telemetry.start("app:"+appID, topic, interval, func() jsonvalue.Value { return i.collectAppMetrics(appID) })
	return jsonvalue.Obj(jsonvalue.Kv("duration", jsonvalue.Int(ms))), nil
}

func (i *Instance) handleApplicationTelemetryStop(payload jsonvalue.Value) (jsonvalue.Value, error) {
	appID, err := requireString(payload, "appId")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	i.telemetry.stop("app:" + appID)
	return jsonvalue.Obj(), nil
}

func (i *Instance) collectDeviceMetrics() jsonvalue.Value {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	var mem struct {
		Total int64 `json:"total"`
		Free  int64 `json:"free"`
	}
	_ = i.client.call(ctx, "DeviceInfo.1.memoryinfo", nil, &mem)

	if i.influx != nil {
		i.influx.WriteDeviceMetric(i.deviceID, "memoryFree", float64(mem.Free))
		i.influx.WriteDeviceMetric(i.deviceID, "memoryTotal", float64(mem.Total))
	}

	return jsonvalue.Obj(
		jsonvalue.Kv("memoryFree", jsonvalue.Int(mem.Free)),
		jsonvalue.Kv("memoryTotal", jsonvalue.Int(mem.Total)),
	)
}

func (i *Instance) collectAppMetrics(appID string) jsonvalue.Value {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	var resp struct {
		State string `json:"state"`
	}
	_ = i.client.call(ctx, "org.rdk.RDKShell.1.getState", map[string]string{"client": appID}, &resp)

	state := mapRDKAppState(resp.State)
	if i.influx != nil {
		running := 0.0
		if state == "FOREGROUND" {
			running = 1.0
		}
		i.influx.WriteAppMetric(i.deviceID, appID, "foreground", running)
	}

	return jsonvalue.Obj(jsonvalue.Kv("state", jsonvalue.Str(state)))
}
