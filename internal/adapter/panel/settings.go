package panel

import (
	"context"
	"sort"

	"github.com/nerrad567/dab-broker/internal/dab"
	"github.com/nerrad567/dab-broker/internal/jsonvalue"
)

// settingSpec is one entry of the SystemSettingsDispatcher map in
// rdkAdapter.h, narrowed to the subset of RDK settings this reference
// adapter fronts.
type settingSpec struct {
	get func(ctx context.Context, i *Instance) (jsonvalue.Value, error)
	set func(ctx context.Context, i *Instance, v jsonvalue.Value) error
}

var settingsTable = map[string]settingSpec{
	"language": {
		get: func(ctx context.Context, i *Instance) (jsonvalue.Value, error) {
			var resp struct {
				UILanguage string `json:"uiLanguage"`
			}
			if err := i.client.call(ctx, "org.rdk.UserPreferences.1.getUILanguage", nil, &resp); err != nil {
				return jsonvalue.Value{}, err
			}
			return jsonvalue.Str(resp.UILanguage), nil
		},
		set: func(ctx context.Context, i *Instance, v jsonvalue.Value) error {
			lang, err := v.String()
			if err != nil {
				return dab.NewException(400, "language must be a string")
			}
			return i.client.call(ctx, "org.rdk.UserPreferences.1.setUILanguage", map[string]string{"uiLanguage": lang}, nil)
		},
	},
	"outputResolution": {
		get: func(ctx context.Context, i *Instance) (jsonvalue.Value, error) {
			var resp struct {
				Resolution string `json:"resolution"`
			}
			if err := i.client.call(ctx, "org.rdk.DisplaySettings.1.getCurrentResolution", nil, &resp); err != nil {
				return jsonvalue.Value{}, err
			}
			return jsonvalue.Str(resp.Resolution), nil
		},
		set: func(ctx context.Context, i *Instance, v jsonvalue.Value) error {
			res, err := v.String()
			if err != nil {
				return dab.NewException(400, "outputResolution must be a string")
			}
			return i.client.call(ctx, "org.rdk.DisplaySettings.1.setCurrentResolution", map[string]string{"resolution": res}, nil)
		},
	},
	"audioVolume": {
		get: func(ctx context.Context, i *Instance) (jsonvalue.Value, error) {
			var resp struct {
				VolumeLevel float64 `json:"volumeLevel"`
			}
			if err := i.client.call(ctx, "org.rdk.DisplaySettings.1.getVolumeLevel", nil, &resp); err != nil {
				return jsonvalue.Value{}, err
			}
			return jsonvalue.Float(resp.VolumeLevel), nil
		},
		set: func(ctx context.Context, i *Instance, v jsonvalue.Value) error {
			level, err := v.Number()
			if err != nil {
				return dab.NewException(400, "audioVolume must be numeric")
			}
			return i.client.call(ctx, "org.rdk.DisplaySettings.1.setVolumeLevel", map[string]float64{"volumeLevel": level}, nil)
		},
	},
	"mute": {
		get: func(ctx context.Context, i *Instance) (jsonvalue.Value, error) {
			var resp struct {
				Muted bool `json:"muted"`
			}
			if err := i.client.call(ctx, "org.rdk.DisplaySettings.1.getMuted", nil, &resp); err != nil {
				return jsonvalue.Value{}, err
			}
			return jsonvalue.Bool(resp.Muted), nil
		},
		set: func(ctx context.Context, i *Instance, v jsonvalue.Value) error {
			muted, err := v.Bool()
			if err != nil {
				return dab.NewException(400, "mute must be a boolean")
			}
			return i.client.call(ctx, "org.rdk.DisplaySettings.1.setMuted", map[string]bool{"muted": muted}, nil)
		},
	},
}

func (i *Instance) handleSystemSettingsList(jsonvalue.Value) (jsonvalue.Value, error) {
	names := make([]string, 0, len(settingsTable))
	for name := range settingsTable {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]jsonvalue.Value, len(names))
	for idx, n := range names {
		items[idx] = jsonvalue.Str(n)
	}
	return jsonvalue.Obj(jsonvalue.Kv("settings", jsonvalue.Arr(items...))), nil
}

func (i *Instance) handleSystemSettingsGet(jsonvalue.Value) (jsonvalue.Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	result := jsonvalue.Obj()
	for name, spec := range settingsTable {
		v, err := spec.get(ctx, i)
		if err != nil {
			continue // a setting the device doesn't support is simply omitted
		}
		result.SetField(name, v)
	}
	return result, nil
}

func (i *Instance) handleSystemSettingsSet(payload jsonvalue.Value) (jsonvalue.Value, error) {
	settings, ok := payload.Get("settings")
	if !ok || !settings.IsObject() {
		return jsonvalue.Value{}, dab.NewException(400, "missing parameter \"settings\"")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	for _, name := range settings.Keys() {
		spec, ok := settingsTable[name]
		if !ok {
			return jsonvalue.Value{}, dab.NewException(400, "unknown setting \""+name+"\"")
		}
		v, _ := settings.Get(name)
		if err := spec.set(ctx, i, v); err != nil {
			if ex, ok := err.(*dab.Exception); ok {
				return jsonvalue.Value{}, ex
			}
			return jsonvalue.Value{}, dab.NewException(500, "setting \""+name+"\": "+err.Error())
		}
	}
	return jsonvalue.Obj(), nil
}
