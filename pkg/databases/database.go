package databases

import (
	"context"
	"time"

	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/store"
)

// Sample is one recorded simulator reading.
type Sample struct {
	Timestamp    time.Time
	Vehicle      string
	CustomMode   bool
	Gear         int
	GearRatio    float64
	Speed        float64
	AxleRatio    float64
	TireDiameter float64
	RPM          float64
	Zone         formula.Zone
}

// NewSample captures the reading of s at ts.
func NewSample(s store.State, ts time.Time) Sample {
	return Sample{
		Timestamp:    ts,
		Vehicle:      vehicleTag(s),
		CustomMode:   s.IsCustomMode,
		Gear:         s.SelectedGear,
		GearRatio:    s.CurrentGearRatio,
		Speed:        s.Speed,
		AxleRatio:    s.AxleRatio,
		TireDiameter: s.TireDiameter,
		RPM:          s.RPM,
		Zone:         s.Zone,
	}
}

func vehicleTag(s store.State) string {
	id := s.SelectedVehicle
	if s.IsCustomMode || !id.IsComplete() {
		return "custom"
	}
	return id.Make + "/" + id.Model + "/" + id.Trim
}

type Database interface {
	Insert(ctx context.Context, sample Sample) error

	Close() error
}
