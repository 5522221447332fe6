package store

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/tosih/rpm-simulator/pkg/models"
)

// StorageKey is the slot the simulator snapshot lives under.
const StorageKey = "rpm-calculator-state"

const (
	defaultSelectedGear = 4
	defaultSpeed        = 60
	minGrownRatio       = 0.3
	grownRatioStep      = 0.15
)

var defaultGearRatios = []float64{3.36, 1.93, 1.29, 1.00, 0.84, 0.56}

// Snapshot is the persisted simulator state.
type Snapshot struct {
	GearCount       int                    `json:"gearCount"`
	GearRatios      []float64              `json:"gearRatios"`
	SelectedGear    int                    `json:"selectedGear"`
	Speed           float64                `json:"speed"`
	AxleRatio       float64                `json:"axleRatio"`
	TireDiameter    float64                `json:"tireDiameter"`
	IsCustomMode    bool                   `json:"isCustomMode"`
	SelectedVehicle models.VehicleIdentity `json:"selectedVehicle"`
}

// DefaultSnapshot is a 6-speed with a 3.73 axle on 26.7" tires, cruising in 4th at 60 MPH.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		GearCount:    len(defaultGearRatios),
		GearRatios:   append([]float64(nil), defaultGearRatios...),
		SelectedGear: defaultSelectedGear,
		Speed:        defaultSpeed,
		AxleRatio:    3.73,
		TireDiameter: 26.7,
		IsCustomMode: true,
	}
}

// Spec returns the vehicle part of the snapshot.
func (s Snapshot) Spec() models.VehicleSpec {
	return models.VehicleSpec{
		GearCount:    s.GearCount,
		GearRatios:   append([]float64(nil), s.GearRatios...),
		AxleRatio:    s.AxleRatio,
		TireDiameter: s.TireDiameter,
	}
}

func (s Snapshot) clone() Snapshot {
	s.GearRatios = append([]float64(nil), s.GearRatios...)
	return s
}

// resizeRatios truncates ratios to n, or grows them with each new gear 0.15 below the
// previous one (never below 0.3).
func resizeRatios(ratios []float64, n int) []float64 {
	if n <= len(ratios) {
		return append([]float64(nil), ratios[:n]...)
	}
	out := append(make([]float64, 0, n), ratios...)
	for i := len(ratios); i < n; i++ {
		prev := minGrownRatio + grownRatioStep
		if i > 0 {
			prev = out[i-1]
		}
		next := math.Max(minGrownRatio, prev-grownRatioStep)
		out = append(out, math.Round(next*1000)/1000)
	}
	return out
}

func clampGear(gear, count int) int {
	if gear > count {
		gear = count
	}
	if gear < 1 {
		gear = 1
	}
	return gear
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// decodeSnapshot restores a snapshot field by field. Fields that are absent, null or
// malformed keep their default; only a blob that is not a JSON object fails.
func decodeSnapshot(data []byte) (Snapshot, error) {
	s := DefaultSnapshot()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return s, errors.Wrap(err, "stored state is not a JSON object")
	}

	var gearCount int
	hasGearCount := decodeField(fields, "gearCount", &gearCount) && gearCount >= 1 && gearCount <= models.MaxGears

	var ratios []float64
	if decodeField(fields, "gearRatios", &ratios) && len(ratios) > 0 && len(ratios) <= models.MaxGears {
		s.GearRatios = ratios
		s.GearCount = len(ratios)
	}
	if hasGearCount && gearCount != s.GearCount {
		s.GearRatios = resizeRatios(s.GearRatios, gearCount)
		s.GearCount = gearCount
	}

	s.SelectedGear = minInt(defaultSelectedGear, s.GearCount)
	var gear int
	if decodeField(fields, "selectedGear", &gear) {
		s.SelectedGear = clampGear(gear, s.GearCount)
	}

	var f float64
	if decodeField(fields, "speed", &f) {
		s.Speed = f
	}
	if decodeField(fields, "axleRatio", &f) {
		s.AxleRatio = f
	}
	if decodeField(fields, "tireDiameter", &f) {
		s.TireDiameter = f
	}

	var custom bool
	if decodeField(fields, "isCustomMode", &custom) {
		s.IsCustomMode = custom
	}

	var vehicle map[string]json.RawMessage
	if decodeField(fields, "selectedVehicle", &vehicle) {
		s.SelectedVehicle = decodeIdentity(vehicle)
	}
	return s, nil
}

// decodeField unmarshals fields[name] into dst and reports whether it succeeded.
// dst is left untouched when the field is absent, null or has the wrong shape.
func decodeField(fields map[string]json.RawMessage, name string, dst interface{}) bool {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		glog.V(1).Infof("Ignoring stored %s: %s", name, err)
		return false
	}
	return true
}

func decodeIdentity(fields map[string]json.RawMessage) models.VehicleIdentity {
	var id models.VehicleIdentity
	decodeField(fields, "make", &id.Make)
	decodeField(fields, "model", &id.Model)
	decodeField(fields, "trim", &id.Trim)

	// Years were stored as numbers, numeric strings or "" for unset.
	var year interface{}
	if decodeField(fields, "year", &year) {
		switch y := year.(type) {
		case float64:
			id.Year = int(y)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(y)); err == nil {
				id.Year = n
			}
		}
	}
	return id
}
