package panel

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/dab-broker/internal/dab"
	"github.com/nerrad567/dab-broker/internal/jsonvalue"
)

const screenCaptureTimeout = 5 * time.Second

// handleOutputImage mirrors rdkAdapter.h's outputImage: it stands up a
// short-lived local HTTP listener (the UploadServer), asks the device's
// ScreenCapture plugin to POST a PNG to it, and base64-encodes whatever
// arrives.
func (i *Instance) handleOutputImage(jsonvalue.Value) (jsonvalue.Value, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "starting upload listener: "+err.Error())
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		select {
		case received <- data:
		default:
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer srv.Close()

	port := ln.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithTimeout(context.Background(), defaultRPCTimeout)
	defer cancel()

	params := map[string]string{"url": fmt.Sprintf("http://127.0.0.1:%d/", port)}
	if err := i.client.call(ctx, "org.rdk.ScreenCapture.1.uploadScreenCapture", params, nil); err != nil {
		return jsonvalue.Value{}, dab.NewException(500, "screen capture failed: "+err.Error())
	}

	select {
	case data := <-received:
		encoded := base64.StdEncoding.EncodeToString(data)
		return jsonvalue.Obj(jsonvalue.Kv("image", jsonvalue.Str("data:image/png;base64,"+encoded))), nil
	case <-time.After(screenCaptureTimeout):
		return jsonvalue.Value{}, dab.NewException(500, "timed out waiting for screen capture upload")
	}
}
