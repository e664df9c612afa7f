package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceMetric writes a single device telemetry sample to InfluxDB.
// This is the sink the reference panel adapter uses for its
// device/telemetry and application/telemetry operations; the write is
// non-blocking, batched and sent asynchronously by the underlying write
// API.
//
// Parameters:
//   - deviceID: the DAB deviceId the sample came from
//   - measurement: the telemetry parameter name as reported by the device
//   - value: the numeric value to record
func (c *Client) WriteDeviceMetric(deviceID string, measurement string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_metrics",
		map[string]string{
			"device_id":   deviceID,
			"measurement": measurement,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteAppMetric writes an application-telemetry sample, tagged by the
// application the telemetry is reporting on in addition to the device.
func (c *Client) WriteAppMetric(deviceID, appID, measurement string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"app_metrics",
		map[string]string{
			"device_id":   deviceID,
			"app_id":      appID,
			"measurement": measurement,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
