package dab

import (
	"strings"

	"github.com/nerrad567/dab-broker/internal/jsonvalue"
)

// RequestEnvelope is the parsed form of an inbound message. Topic is
// injected by the MQTT Session from delivery metadata, not the payload.
type RequestEnvelope struct {
	Topic           string
	Payload         jsonvalue.Value
	ResponseTopic   string
	CorrelationData []byte
}

// Dispatcher routes a RequestEnvelope to the right instance and operation
// and always returns a reply Value — it never returns a Go error, because
// exactly one reply must be produced for every well-formed inbound
// request.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher builds a Dispatcher over registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch parses req.Topic, routes to the matching instance/operation, and
// returns the shaped reply envelope.
func (d *Dispatcher) Dispatch(req RequestEnvelope) jsonvalue.Value {
	deviceID, op, err := parseTopic(req.Topic)
	if err != nil {
		return errorReply(ErrMalformedTopic)
	}

	if op == OpDiscovery && deviceID == "" {
		// dab/discovery carries no deviceId segment at all; parseTopic
		// reports that case with an empty deviceID. dab/<deviceId>/discovery
		// is a normal per-device operation and falls through below.
		return d.dispatchDiscovery()
	}

	bi, ok := d.registry.lookup(deviceID)
	if !ok {
		return errorReply(ErrUnknownDevice)
	}

	if op == OpOperations {
		return operationsReply(bi.ops)
	}

	handler, ok := bi.ops.handlerFor(op)
	if !ok {
		return errorReply(ErrUnsupported)
	}

	result, err := handler(req.Payload)
	if err != nil {
		if ex, ok := err.(*Exception); ok {
			return errorReply(ex)
		}
		return errorReply(&Exception{Code: 500, Text: "internal"})
	}
	return shapeReply(result)
}

// dispatchDiscovery has no single owning instance to route to; the
// bridge-wide alias (mirroring original_source/dabClient.h's separate
// discovery topic) simply reports that the bridge is alive.
func (d *Dispatcher) dispatchDiscovery() jsonvalue.Value {
	return jsonvalue.Obj(jsonvalue.Kv("status", jsonvalue.Int(200)))
}

// parseTopic verifies the dab/ prefix, splits off deviceId, and
// classifies the remaining path as an Operation. A bare "dab/discovery"
// topic (no further segments) is recognized specially.
func parseTopic(topic string) (deviceID string, op Operation, err error) {
	const prefix = "dab/"
	if !strings.HasPrefix(topic, prefix) {
		return "", "", ErrMalformedTopic
	}
	rest := topic[len(prefix):]
	if rest == "discovery" {
		return "", OpDiscovery, nil
	}

	slash := strings.IndexByte(rest, '/')
	if slash <= 0 || slash == len(rest)-1 {
		return "", "", ErrMalformedTopic
	}
	return rest[:slash], Operation(rest[slash+1:]), nil
}

// shapeReply adds status 200 to an Object lacking one; anything else
// (including an Object that already set status) is used as-is — the
// handler-supplied status always wins.
func shapeReply(v jsonvalue.Value) jsonvalue.Value {
	if v.IsObject() {
		if !v.Has("status") {
			v.SetField("status", jsonvalue.Int(200))
		}
		return v
	}
	return jsonvalue.Obj(
		jsonvalue.Kv("status", jsonvalue.Int(200)),
		jsonvalue.Kv("payload", v),
	)
}

func errorReply(ex *Exception) jsonvalue.Value {
	return jsonvalue.Obj(
		jsonvalue.Kv("status", jsonvalue.Int(int64(ex.Code))),
		jsonvalue.Kv("error", jsonvalue.Str(ex.Text)),
	)
}

func operationsReply(ol *oplist) jsonvalue.Value {
	names := ol.operationNames()
	items := make([]jsonvalue.Value, len(names))
	for i, n := range names {
		items[i] = jsonvalue.Str(n)
	}
	return jsonvalue.Obj(
		jsonvalue.Kv("status", jsonvalue.Int(200)),
		jsonvalue.Kv("operations", jsonvalue.Arr(items...)),
	)
}
