package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tosih/rpm-simulator/pkg/models"
)

const finalDriveKey = "final_drive"

var gearOrder = []string{"1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th", "9th", "10th"}

// parseRatio accepts a JSON number or numeric string and requires a finite, positive value.
func parseRatio(v interface{}) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, errors.Wrapf(err, "ratio %q is not numeric", x)
		}
		f = parsed
	default:
		return 0, errors.Errorf("ratio %v has unsupported type %T", v, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, errors.Errorf("ratio %v is not a positive number", v)
	}
	return f, nil
}

// validateTrim reports why a trim cannot produce complete vehicle parameters, or nil.
func validateTrim(t TrimRecord) error {
	ratios := t.Transmission.GearRatios
	if ratios == nil {
		return errors.New("no gear ratios")
	}

	fd, ok := ratios[finalDriveKey]
	if !ok {
		return errors.New("no final drive ratio")
	}
	if _, err := parseRatio(fd); err != nil {
		return errors.Wrap(err, "final drive")
	}

	gears := 0
	for _, label := range gearOrder {
		v, ok := ratios[label]
		if !ok {
			continue
		}
		if _, err := parseRatio(v); err != nil {
			return errors.Wrapf(err, "%s gear", label)
		}
		gears++
	}
	if gears == 0 {
		return errors.New("no numbered gear ratios")
	}
	if _, ok := ratios[gearOrder[0]]; !ok {
		return errors.New("gear ratios do not start at 1st")
	}

	if tireDiameter(t.Tires) <= 0 {
		return errors.New("no tire diameter")
	}
	return nil
}

// tireDiameter prefers the front axle and falls back to the rear.
func tireDiameter(t Tires) float64 {
	if t.Front != nil && t.Front.DiameterInches > 0 {
		return t.Front.DiameterInches
	}
	if t.Rear != nil && t.Rear.DiameterInches > 0 {
		return t.Rear.DiameterInches
	}
	return 0
}

// ExtractParameters turns a trim into calculator input. Gear ratios are collected
// from 1st upwards and collection stops at the first missing (or unusable) label,
// so the gear count is the number of contiguous gears.
func ExtractParameters(t TrimRecord) models.VehicleSpec {
	ratios := t.Transmission.GearRatios

	var gears []float64
	for _, label := range gearOrder {
		v, ok := ratios[label]
		if !ok {
			break
		}
		r, err := parseRatio(v)
		if err != nil {
			break
		}
		gears = append(gears, r)
	}

	axle, _ := parseRatio(ratios[finalDriveKey])

	desc := t.Transmission.Description
	if desc == "" {
		desc = "Unknown"
	}

	return models.VehicleSpec{
		GearCount:        len(gears),
		GearRatios:       gears,
		AxleRatio:        axle,
		TireDiameter:     tireDiameter(t.Tires),
		TransmissionType: desc,
	}
}
