package panel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/dab-broker/internal/dab"
	"github.com/nerrad567/dab-broker/internal/jsonvalue"
)

const voiceDownloadTimeout = 15 * time.Second

func (i *Instance) handleVoiceList(jsonvalue.Value) (jsonvalue.Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	var resp struct {
		Systems []struct {
			Name    string `json:"name"`
			Enabled bool   `json:"enabled"`
		} `json:"voiceSystems"`
	}
	if err := i.client.call(ctx, "org.rdk.VoiceControl.1.getVoiceSystems", nil, &resp); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "listing voice systems: "+err.Error())
	}

	items := make([]jsonvalue.Value, len(resp.Systems))
	for idx, s := range resp.Systems {
		items[idx] = jsonvalue.Obj(
			jsonvalue.Kv("name", jsonvalue.Str(s.Name)),
			jsonvalue.Kv("enabled", jsonvalue.Bool(s.Enabled)),
		)
	}
	return jsonvalue.Obj(jsonvalue.Kv("voiceSystems", jsonvalue.Arr(items...))), nil
}

func (i *Instance) handleVoiceSet(payload jsonvalue.Value) (jsonvalue.Value, error) {
	voiceSystem, ok := payload.Get("voiceSystem")
	if !ok || !voiceSystem.IsObject() {
		return jsonvalue.Value{}, dab.NewException(400, "missing parameter \"voiceSystem\"")
	}
	name, err := requireString(voiceSystem, "name")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	enabledVal, ok := voiceSystem.Get("enabled")
	if !ok {
		return jsonvalue.Value{}, dab.NewException(400, "missing parameter \"voiceSystem.enabled\"")
	}
	enabled, err := enabledVal.Bool()
	if err != nil {
		return jsonvalue.Value{}, dab.NewException(400, "voiceSystem.enabled must be a boolean")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	params := map[string]any{"name": name, "enabled": enabled}
	if err := i.client.call(ctx, "org.rdk.VoiceControl.1.setVoiceSystem", params, nil); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "setting voice system: "+err.Error())
	}
	return jsonvalue.Obj(), nil
}

// handleVoiceSendAudio mirrors rdkAdapter.h's voiceSendAudio: it fetches
// fileLocation into a local temp file, hands RDK the local path, and always
// removes the temp file afterward regardless of outcome.
func (i *Instance) handleVoiceSendAudio(payload jsonvalue.Value) (jsonvalue.Value, error) {
	fileLocation, err := requireString(payload, "fileLocation")
	if err != nil {
		return jsonvalue.Value{}, err
	}

	tmpPath, err := downloadToTemp(fileLocation)
	if err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "downloading audio: "+err.Error())
	}
	defer os.Remove(tmpPath)

	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	params := map[string]string{"audioFile": tmpPath}
	if err := i.client.call(ctx, "org.rdk.VoiceControl.1.voiceSessionRequest", params, nil); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "voice session failed: "+err.Error())
	}
	return jsonvalue.Obj(), nil
}

func (i *Instance) handleVoiceSendText(payload jsonvalue.Value) (jsonvalue.Value, error) {
	text, err := requireString(payload, "requestText")
	if err != nil {
		return jsonvalue.Value{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	params := map[string]string{"text": text}
	if err := i.client.call(ctx, "org.rdk.TextToSpeech.1.speak", params, nil); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "voice text request failed: "+err.Error())
	}
	return jsonvalue.Obj(), nil
}

func downloadToTemp(url string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), voiceDownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	f, err := os.CreateTemp("", fmt.Sprintf("dab-voice-%s-*.audio", uuid.NewString()))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
