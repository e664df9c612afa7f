// dab is the Device Application Bridge broker entry point.
//
// Usage:
//
//	dab <mqtt-broker-uri> <deviceId> <deviceAddress>
//
// It connects deviceAddress to the first compatible registered
// implementation, subscribes to that device's operation topics on the
// given MQTT v5 broker, and serves DAB requests until a shutdown signal
// arrives or the broker connection is lost.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/dab-broker/internal/adapter/panel"
	"github.com/nerrad567/dab-broker/internal/dab"
	"github.com/nerrad567/dab-broker/internal/infrastructure/config"
	"github.com/nerrad567/dab-broker/internal/infrastructure/influxdb"
	"github.com/nerrad567/dab-broker/internal/infrastructure/logging"
	"github.com/nerrad567/dab-broker/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

const usage = "usage: dab <mqtt-broker-uri> <deviceId> <deviceAddress>"

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	brokerURI, deviceID, deviceAddress := os.Args[1], os.Args[2], os.Args[3]

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, brokerURI, deviceID, deviceAddress); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main so it can return
// an error for main to translate into an exit code.
func run(ctx context.Context, brokerURI, deviceID, deviceAddress string) error {
	log := logging.Default()
	log.Info("starting dab broker", "version", version, "commit", commit, "device_id", deviceID)

	cfg, err := config.Load(os.Getenv("DAB_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to influxdb: %w", err)
		}
		defer func() {
			log.Info("closing influxdb connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing influxdb", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("influxdb write error", "error", err)
		})
		log.Info("influxdb connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("influxdb disabled")
	}

	registry := dab.NewRegistry(panel.New(log, influxClient))
	if err := registry.MakeDeviceInstance(deviceID, deviceAddress); err != nil {
		return fmt.Errorf("registering device %q: %w", deviceID, err)
	}
	dispatcher := dab.NewDispatcher(registry)

	sess := mqtt.NewSession(dispatcher, log, cfg.KeepAlive(), cfg.DrainTimeout(), cfg.PublishTimeout())
	// clientID is suffixed with deviceID rather than the bare "dab" the
	// normative CLI contract specifies, so that multiple broker instances
	// fronting different devices against the same MQTT server don't collide.
	if err := sess.Connect(ctx, brokerURI, "dab-"+deviceID, registry.SubscriptionTopics()); err != nil {
		return fmt.Errorf("connecting to mqtt broker: %w", err)
	}
	registry.SetPublishCallback(sess.Publish)
	defer func() {
		log.Info("disconnecting from mqtt broker")
		if closeErr := sess.Disconnect(); closeErr != nil {
			log.Error("error disconnecting from mqtt broker", "error", closeErr)
		}
	}()
	log.Info("mqtt session established", "broker", brokerURI, "topics", len(registry.SubscriptionTopics()))

	log.Info("dab broker running, waiting for shutdown signal")

	lost := make(chan struct{})
	go func() {
		sess.Wait()
		close(lost)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case <-lost:
		log.Warn("mqtt session ended unexpectedly")
	}

	log.Info("dab broker stopped")
	return nil
}
