package dab

import (
	"fmt"
	"sort"
	"sync"
)

// boundInstance pairs a constructed Instance with the introspected oplist
// the Dispatcher and the operations handler both need.
type boundInstance struct {
	instance Instance
	ops      *oplist
}

// Registry holds one Instance per deviceId and selects which Implementation
// fronts a newly registered device.
type Registry struct {
	mu   sync.RWMutex
	impl []Implementation
	dev  map[string]*boundInstance

	pub     Publisher
	pubOnce sync.Once
}

// NewRegistry constructs a Registry that will try impls, in order, against
// each call to MakeDeviceInstance. impls is the implementation list a
// deployment declares in main; order matters, since the first compatible
// match wins.
func NewRegistry(impls ...Implementation) *Registry {
	return &Registry{impl: impls, dev: make(map[string]*boundInstance)}
}

// MakeDeviceInstance walks the configured implementation list in order,
// probing IsCompatible(deviceAddress) on each; the first match wins and is
// constructed. Fails with ErrNoCompatibleImpl if none match, or
// ErrDuplicateDevice if deviceID is already registered.
func (r *Registry) MakeDeviceInstance(deviceID, deviceAddress string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dev[deviceID]; exists {
		return ErrDuplicateDevice
	}

	for _, impl := range r.impl {
		if !impl.IsCompatible(deviceAddress) {
			continue
		}
		inst := impl.New(deviceID, deviceAddress)
		if r.pub != nil {
			inst.SetPublisher(r.pub)
		}
		r.dev[deviceID] = &boundInstance{
			instance: inst,
			ops:      introspect(inst.Handlers()),
		}
		return nil
	}
	return ErrNoCompatibleImpl
}

// lookup returns the bound instance for deviceID, or ok=false if no such
// device has been registered.
func (r *Registry) lookup(deviceID string) (*boundInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bi, ok := r.dev[deviceID]
	return bi, ok
}

// SubscriptionTopics returns the union of every registered instance's
// topic set: one dab/<deviceId>/<op> per supported operation (including
// dab/<deviceId>/discovery for instances that support OpDiscovery), plus
// the fixed bridge-wide dab/discovery topic if any instance supports it.
func (r *Registry) SubscriptionTopics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var topics []string
	add := func(t string) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			topics = append(topics, t)
		}
	}

	for deviceID, bi := range r.dev {
		for _, op := range bi.ops.ordered {
			if op == OpDiscovery {
				add("dab/discovery")
			}
			add(fmt.Sprintf("dab/%s/%s", deviceID, op))
		}
	}
	sort.Strings(topics)
	return topics
}

// SetPublishCallback fans pub out to every currently-registered instance
// and every instance registered afterward. Assignment must be idempotent
// and safe against concurrent registration; calling it more than once
// only takes effect the first time, and later calls are no-ops.
func (r *Registry) SetPublishCallback(pub Publisher) {
	r.pubOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.pub = pub
		for _, bi := range r.dev {
			bi.instance.SetPublisher(pub)
		}
	})
}
