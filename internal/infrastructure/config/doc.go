// Package config handles loading and validating the DAB broker's ambient
// settings.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// deviceId, deviceAddress, and the broker URI are CLI-positional and are
// not part of this package; Config covers only the settings a
// deployment may want to tune without touching the command line: MQTT
// session timing, the optional InfluxDB telemetry sink, and logging.
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv("DAB_CONFIG"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := logging.New(cfg.Logging, version)
package config
