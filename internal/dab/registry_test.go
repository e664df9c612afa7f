package dab

import (
	"testing"

	"github.com/nerrad567/dab-broker/internal/jsonvalue"
)

// TestRegistryPicksFirstCompatibleImplementation checks that, with
// implementations [A,B,C] where an address is compatible with both A and
// C, the first declared match wins.
func TestRegistryPicksFirstCompatibleImplementation(t *testing.T) {
	var constructedBy string
	makeImpl := func(name string, compatible func(string) bool) Implementation {
		return &trackingImpl{name: name, compatible: compatible, onConstruct: func(n string) { constructedBy = n }}
	}

	a := makeImpl("A", func(addr string) bool { return addr == "127.0.0.1" })
	b := makeImpl("B", func(addr string) bool { return true })
	c := makeImpl("C", func(addr string) bool { return addr == "127.0.0.1" })

	reg := NewRegistry(a, b, c)
	if err := reg.MakeDeviceInstance("d1", "127.0.0.1"); err != nil {
		t.Fatalf("MakeDeviceInstance() error = %v", err)
	}
	if constructedBy != "A" {
		t.Fatalf("constructed by %q, want A", constructedBy)
	}
}

// TestRegistryFallsThroughToLaterImplementation checks the other half of
// determinism: an address incompatible with A but matched by B selects B.
func TestRegistryFallsThroughToLaterImplementation(t *testing.T) {
	var constructedBy string
	makeImpl := func(name string, compatible func(string) bool) Implementation {
		return &trackingImpl{name: name, compatible: compatible, onConstruct: func(n string) { constructedBy = n }}
	}

	a := makeImpl("A", func(addr string) bool { return addr == "127.0.0.1" })
	b := makeImpl("B", func(addr string) bool { return true })

	reg := NewRegistry(a, b)
	if err := reg.MakeDeviceInstance("d1", "127.0.0.2"); err != nil {
		t.Fatalf("MakeDeviceInstance() error = %v", err)
	}
	if constructedBy != "B" {
		t.Fatalf("constructed by %q, want B", constructedBy)
	}
}

func TestRegistryNoCompatibleImplementation(t *testing.T) {
	a := &trackingImpl{name: "A", compatible: func(string) bool { return false }}
	reg := NewRegistry(a)
	if err := reg.MakeDeviceInstance("d1", "anything"); err != ErrNoCompatibleImpl {
		t.Fatalf("MakeDeviceInstance() error = %v, want ErrNoCompatibleImpl", err)
	}
}

func TestRegistryDuplicateDevice(t *testing.T) {
	a := &trackingImpl{name: "A", compatible: func(string) bool { return true }}
	reg := NewRegistry(a)
	if err := reg.MakeDeviceInstance("d1", "addr"); err != nil {
		t.Fatalf("first MakeDeviceInstance() error = %v", err)
	}
	if err := reg.MakeDeviceInstance("d1", "addr"); err != ErrDuplicateDevice {
		t.Fatalf("second MakeDeviceInstance() error = %v, want ErrDuplicateDevice", err)
	}
}

func TestRegistrySubscriptionTopicsUnionsInstances(t *testing.T) {
	a := &trackingImpl{name: "A", compatible: func(string) bool { return true }, handlers: map[Operation]HandlerFunc{
		OpDeviceInfo: deviceInfoHandler,
	}}
	reg := NewRegistry(a)
	_ = reg.MakeDeviceInstance("d1", "addr")

	topics := reg.SubscriptionTopics()
	if len(topics) != 1 || topics[0] != "dab/d1/device/info" {
		t.Fatalf("SubscriptionTopics() = %v, want [dab/d1/device/info]", topics)
	}
}

func TestRegistrySetPublishCallbackIsIdempotent(t *testing.T) {
	a := &trackingImpl{name: "A", compatible: func(string) bool { return true }, handlers: map[Operation]HandlerFunc{
		OpDeviceInfo: deviceInfoHandler,
	}}
	reg := NewRegistry(a)
	_ = reg.MakeDeviceInstance("d1", "addr")

	var firstCalls, secondCalls int
	reg.SetPublishCallback(func(topic string, payload jsonvalue.Value) { firstCalls++ })
	reg.SetPublishCallback(func(topic string, payload jsonvalue.Value) { secondCalls++ })

	bi, ok := reg.lookup("d1")
	if !ok {
		t.Fatal("d1 not registered")
	}
	fi := bi.instance.(*fakeInstance)
	fi.pub("dab/d1/device/info", jsonvalue.Obj())

	if firstCalls != 1 || secondCalls != 0 {
		t.Fatalf("firstCalls=%d secondCalls=%d, want 1 and 0 (second SetPublishCallback should be a no-op)", firstCalls, secondCalls)
	}
}

// trackingImpl is a fakeImpl variant that records which implementation
// actually got constructed, for registry determinism assertions.
type trackingImpl struct {
	name        string
	compatible  func(string) bool
	handlers    map[Operation]HandlerFunc
	onConstruct func(name string)
}

func (t *trackingImpl) IsCompatible(addr string) bool { return t.compatible(addr) }
func (t *trackingImpl) New(deviceID, deviceAddress string) Instance {
	if t.onConstruct != nil {
		t.onConstruct(t.name)
	}
	h := t.handlers
	if h == nil {
		h = map[Operation]HandlerFunc{}
	}
	return &fakeInstance{handlers: h}
}
