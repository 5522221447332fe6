package databases

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/golang/glog"
	influxdb "github.com/influxdata/influxdb1-client/v2"
	"github.com/pkg/errors"
)

const maxWriteRetries = 3

type influxDbDatabase struct {
	conn     influxdb.Client
	database string
}

func (this *influxDbDatabase) Insert(ctx context.Context, sample Sample) error {
	glog.V(1).Infof("Recording sample to influxdb")

	bp, err := influxdb.NewBatchPoints(influxdb.BatchPointsConfig{
		Database:  this.database,
		Precision: "ms",
	})
	if err != nil {
		return err
	}

	// Indexed tags
	tags := map[string]string{
		"vehicle": sample.Vehicle,
		"zone":    string(sample.Zone),
		"gear":    fmt.Sprint(sample.Gear),
	}

	rpm, err := influxdb.NewPoint(
		"rpm",
		tags,
		map[string]interface{}{
			"rpm":           sample.RPM,
			"speed":         sample.Speed,
			"gear_ratio":    sample.GearRatio,
			"axle_ratio":    sample.AxleRatio,
			"tire_diameter": sample.TireDiameter,
			"custom_mode":   sample.CustomMode,
		}, sample.Timestamp)
	if err != nil {
		return err
	}
	bp.AddPoint(rpm)

	onError := func(e error, d time.Duration) {
		glog.Errorf("Error writing to InfluxDB. Retrying in (%s): %s", d.Round(time.Millisecond), e)
	}
	strategy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxWriteRetries), ctx)
	err = backoff.RetryNotify(func() error {
		return this.conn.Write(bp)
	}, strategy, onError)
	if err != nil {
		return errors.Wrap(err, "could not write sample to InfluxDB after multiple tries")
	}

	glog.V(1).Info("Writing to InfluxDB successful")
	return nil
}

func (this *influxDbDatabase) Close() error {
	return this.conn.Close()
}

func OpenInfluxDbDatabase(address string, username string, password string, database string) (Database, error) {
	// Create a new HTTPClient
	c, err := influxdb.NewHTTPClient(influxdb.HTTPConfig{
		Addr:     address,
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	return &influxDbDatabase{
		conn:     c,
		database: database,
	}, nil
}
