package arrowsink

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	client "github.com/influxdata/influxdb1-client/v2"
)

// TableSnapshot is a single point-in-time reading of an arrowtable,
// the unit InfluxExporter writes.
type TableSnapshot struct {
	Len, Cap     int
	MaxWindow    int
	DisplacedSum int
}

// InfluxExporter periodically writes TableSnapshots to InfluxDB as a
// single measurement, one field per TableSnapshot field.
type InfluxExporter struct {
	client      client.Client
	database    string
	measurement string
}

// NewInfluxExporter connects to an InfluxDB HTTP endpoint at addr
// (e.g. "http://localhost:8086").
func NewInfluxExporter(addr, database, measurement string) (*InfluxExporter, error) {
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:    addr,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &InfluxExporter{client: c, database: database, measurement: measurement}, nil
}

// Write sends one snapshot, tagged with name, retrying up to a minute
// of exponential backoff on failure before giving up.
func (e *InfluxExporter) Write(name string, snap TableSnapshot) error {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{Database: e.database, Precision: "s"})
	if err != nil {
		return err
	}
	tags := map[string]string{"table": name}
	fields := map[string]interface{}{
		"len":           snap.Len,
		"cap":           snap.Cap,
		"max_window":    snap.MaxWindow,
		"displaced_sum": snap.DisplacedSum,
	}
	pt, err := client.NewPoint(e.measurement, tags, fields, time.Now())
	if err != nil {
		return err
	}
	bp.AddPoint(pt)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = time.Minute
	if err := backoff.Retry(func() error {
		return e.client.Write(bp)
	}, bo); err != nil {
		return fmt.Errorf("arrowsink: writing to influx: %w", err)
	}
	return nil
}

// Close releases the underlying HTTP client.
func (e *InfluxExporter) Close() error {
	return e.client.Close()
}
