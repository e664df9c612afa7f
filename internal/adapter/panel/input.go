package panel

import (
	"context"
	"sort"

	"github.com/nerrad567/dab-broker/internal/dab"
	"github.com/nerrad567/dab-broker/internal/jsonvalue"
)

// defaultKeymap mirrors rdkAdapter.h's DEFAULT_KEYMAP fallback, used when no
// device-specific keymap is loaded: DAB key names to Linux input event
// codes that org.rdk.RDKShell.1.injectKey understands.
var defaultKeymap = map[string]int{
	"KEY_POWER":       116,
	"KEY_HOME":        36,
	"KEY_BACK":        8,
	"KEY_UP":          103,
	"KEY_DOWN":        108,
	"KEY_LEFT":        105,
	"KEY_RIGHT":       106,
	"KEY_ENTER":       28,
	"KEY_PLAY":        164,
	"KEY_PAUSE":       119,
	"KEY_VOLUME_UP":   115,
	"KEY_VOLUME_DOWN": 114,
	"KEY_MUTE":        113,
}

func (i *Instance) handleInputKeyList(jsonvalue.Value) (jsonvalue.Value, error) {
	names := make([]string, 0, len(defaultKeymap))
	for name := range defaultKeymap {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]jsonvalue.Value, len(names))
	for idx, n := range names {
		items[idx] = jsonvalue.Str(n)
	}
	return jsonvalue.Obj(jsonvalue.Kv("keyCodes", jsonvalue.Arr(items...))), nil
}

func (i *Instance) handleInputKeyPress(payload jsonvalue.Value) (jsonvalue.Value, error) {
	code, err := requireKeyCode(payload)
	if err != nil {
		return jsonvalue.Value{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	params := map[string]int{"keyCode": code}
	if err := i.client.call(ctx, "org.rdk.RDKShell.1.injectKey", params, nil); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "key press failed: "+err.Error())
	}
	return jsonvalue.Obj(), nil
}

func (i *Instance) handleInputKeyLongPress(payload jsonvalue.Value) (jsonvalue.Value, error) {
	code, err := requireKeyCode(payload)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	durVal, ok := payload.Get("durationMs")
	if !ok {
		return jsonvalue.Value{}, dab.NewException(400, "missing parameter \"durationMs\"")
	}
	durMs, err := durVal.Number()
	if err != nil || durMs <= 0 {
		return jsonvalue.Value{}, dab.NewException(400, "durationMs must be a positive number")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	params := map[string]any{"keyCode": code, "holdTime": int64(durMs)}
	if err := i.client.call(ctx, "org.rdk.RDKShell.1.injectKey", params, nil); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "long key press failed: "+err.Error())
	}
	return jsonvalue.Obj(), nil
}

func requireKeyCode(payload jsonvalue.Value) (int, error) {
	name, err := requireString(payload, "keyCode")
	if err != nil {
		return 0, err
	}
	code, ok := defaultKeymap[name]
	if !ok {
		return 0, dab.NewException(400, "unknown keyCode \""+name+"\"")
	}
	return code, nil
}
