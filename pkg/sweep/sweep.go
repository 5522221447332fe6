package sweep

import (
	"math"

	"github.com/pkg/errors"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/models"
)

// maxSteps bounds the number of speeds a single sweep produces.
const maxSteps = 1000

// Row holds the RPM of every gear at one speed.
type Row struct {
	Speed float64        `json:"speed"`
	RPM   []float64      `json:"rpm"`
	Zones []formula.Zone `json:"zones"`
}

// Table is a speed-by-gear RPM sweep of one vehicle.
type Table struct {
	Name       string             `json:"name"`
	Spec       models.VehicleSpec `json:"spec"`
	Thresholds formula.Thresholds `json:"thresholds"`
	Rows       []Row              `json:"rows"`
}

// ShiftPoint is the lowest swept speed at which a gear reaches the yellow zone.
type ShiftPoint struct {
	Gear  int     `json:"gear"`
	Speed float64 `json:"speed"`
	RPM   float64 `json:"rpm"`
	Found bool    `json:"found"`
}

// Speeds returns min, min+step, ... up to and including max.
func Speeds(min, max, step float64) ([]float64, error) {
	if step <= 0 {
		return nil, errors.Errorf("step must be positive, got %g", step)
	}
	if max < min {
		return nil, errors.Errorf("max speed %g is below min speed %g", max, min)
	}
	n := int(math.Floor((max-min)/step+1e-9)) + 1
	if n > maxSteps {
		return nil, errors.Errorf("%d steps exceed the limit of %d", n, maxSteps)
	}
	speeds := make([]float64, n)
	for i := range speeds {
		speeds[i] = min + float64(i)*step
	}
	return speeds, nil
}

// Build computes the RPM and zone of every gear at every speed.
func Build(name string, spec models.VehicleSpec, speeds []float64, thresholds formula.Thresholds) Table {
	t := Table{
		Name:       name,
		Spec:       spec,
		Thresholds: thresholds,
		Rows:       make([]Row, 0, len(speeds)),
	}
	for _, speed := range speeds {
		row := Row{
			Speed: speed,
			RPM:   make([]float64, len(spec.GearRatios)),
			Zones: make([]formula.Zone, len(spec.GearRatios)),
		}
		for i, ratio := range spec.GearRatios {
			rpm := formula.CalculateRPM(speed, ratio, spec.AxleRatio, spec.TireDiameter)
			row.RPM[i] = rpm
			row.Zones[i] = formula.ClassifyZone(rpm, thresholds)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ShiftPoints returns, per gear, the first row whose RPM leaves the green zone.
func (t Table) ShiftPoints() []ShiftPoint {
	points := make([]ShiftPoint, len(t.Spec.GearRatios))
	for gear := range points {
		points[gear].Gear = gear + 1
		for _, row := range t.Rows {
			if row.Zones[gear] != formula.ZoneGreen {
				points[gear].Speed = row.Speed
				points[gear].RPM = row.RPM[gear]
				points[gear].Found = true
				break
			}
		}
	}
	return points
}
