package panel

import (
	"context"

	"github.com/nerrad567/dab-broker/internal/dab"
	"github.com/nerrad567/dab-broker/internal/jsonvalue"
)

// contentCapableApps mirrors rdkAdapter.h's appLaunchWithContent restriction:
// deep-link launch is only wired through for a couple of known app types.
var contentCapableApps = map[string]bool{
	"YouTube": true,
	"Cobalt":  true,
}

func (i *Instance) handleApplicationList(jsonvalue.Value) (jsonvalue.Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	var resp struct {
		Types []string `json:"types"`
	}
	if err := i.client.call(ctx, "org.rdk.RDKShell.1.getAvailableTypes", nil, &resp); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "listing applications: "+err.Error())
	}

	items := make([]jsonvalue.Value, len(resp.Types))
	for idx, t := range resp.Types {
		items[idx] = jsonvalue.Obj(jsonvalue.Kv("id", jsonvalue.Str(t)))
	}
	return jsonvalue.Obj(jsonvalue.Kv("applications", jsonvalue.Arr(items...))), nil
}

func (i *Instance) handleApplicationLaunch(payload jsonvalue.Value) (jsonvalue.Value, error) {
	appID, err := requireString(payload, "appId")
	if err != nil {
		return jsonvalue.Value{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	params := map[string]string{"client": appID, "type": appID, "uri": ""}
	if err := i.client.call(ctx, "org.rdk.RDKShell.1.launchApplication", params, nil); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "launching \""+appID+"\": "+err.Error())
	}
	return jsonvalue.Obj(), nil
}

func (i *Instance) handleApplicationLaunchWithContent(payload jsonvalue.Value) (jsonvalue.Value, error) {
	appID, err := requireString(payload, "appId")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	contentID, err := requireString(payload, "contentId")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if !contentCapableApps[appID] {
		return jsonvalue.Value{}, dab.NewException(400, "app \""+appID+"\" does not support launch-with-content")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	params := map[string]string{"client": appID, "type": appID, "uri": appID + "://watch?v=" + contentID}
	if err := i.client.call(ctx, "org.rdk.RDKShell.1.launchApplication", params, nil); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "launching \""+appID+"\": "+err.Error())
	}
	return jsonvalue.Obj(), nil
}

func (i *Instance) handleApplicationGetState(payload jsonvalue.Value) (jsonvalue.Value, error) {
	appID, err := requireString(payload, "appId")
	if err != nil {
		return jsonvalue.Value{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	var resp struct {
		State string `json:"state"`
	}
	params := map[string]string{"client": appID}
	if err := i.client.call(ctx, "org.rdk.RDKShell.1.getState", params, &resp); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "getting state of \""+appID+"\": "+err.Error())
	}

	return jsonvalue.Obj(jsonvalue.Kv("state", jsonvalue.Str(mapRDKAppState(resp.State)))), nil
}

func mapRDKAppState(rdkState string) string {
	switch rdkState {
	case "running":
		return "FOREGROUND"
	case "suspended":
		return "BACKGROUND"
	default:
		return "STOPPED"
	}
}

func (i *Instance) handleApplicationExit(payload jsonvalue.Value) (jsonvalue.Value, error) {
	appID, err := requireString(payload, "appId")
	if err != nil {
		return jsonvalue.Value{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	params := map[string]string{"client": appID}
	if err := i.client.call(ctx, "org.rdk.RDKShell.1.destroy", params, nil); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "exiting \""+appID+"\": "+err.Error())
	}
	return jsonvalue.Obj(), nil
}

// requireString extracts a required string payload field, raising a 400
// Exception exactly as the source's nativeDispatch does when a fixed
// parameter is absent.
func requireString(payload jsonvalue.Value, name string) (string, error) {
	v, ok := payload.Get(name)
	if !ok {
		return "", dab.NewException(400, "missing parameter \""+name+"\"")
	}
	s, err := v.String()
	if err != nil {
		return "", dab.NewException(400, "\""+name+"\" must be a string")
	}
	return s, nil
}
