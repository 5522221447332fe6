package formula

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ConversionConstant converts MPH and tire inches into engine revolutions per minute
// (63360 in/mile / 60 min/h / π, rounded).
const ConversionConstant = 336.13

// Zone is a discrete RPM range used as a warning indicator.
type Zone string

const (
	ZoneGreen  Zone = "green"
	ZoneYellow Zone = "yellow"
	ZoneRed    Zone = "red"
)

// Thresholds define where the yellow and red zones start.
type Thresholds struct {
	Yellow float64 `json:"yellow"`
	Red    float64 `json:"red"`
}

// DefaultThresholds are the gauge defaults: yellow from 4000 RPM, red from 5500 RPM.
var DefaultThresholds = Thresholds{Yellow: 4000, Red: 5500}

var printer = message.NewPrinter(language.English)

// CalculateRPM returns the engine RPM for a vehicle speed (MPH) in a gear.
//
// RPM = (axleRatio × speed × gearRatio × 336.13) / tireDiameter
//
// A tire diameter of zero or less yields 0, as does any non-finite result.
func CalculateRPM(speed, gearRatio, axleRatio, tireDiameter float64) float64 {
	if tireDiameter <= 0 {
		return 0
	}
	rpm := (axleRatio * speed * gearRatio * ConversionConstant) / tireDiameter
	if math.IsNaN(rpm) || math.IsInf(rpm, 0) {
		return 0
	}
	return rpm
}

// ClassifyZone places rpm into green, yellow or red using the given thresholds.
func ClassifyZone(rpm float64, t Thresholds) Zone {
	switch {
	case rpm >= t.Red:
		return ZoneRed
	case rpm >= t.Yellow:
		return ZoneYellow
	default:
		return ZoneGreen
	}
}

// FormatRPM rounds rpm to the nearest integer and groups thousands ("2,814").
func FormatRPM(rpm float64) string {
	r := math.Round(rpm)
	if r == 0 {
		r = 0 // no "-0"
	}
	return printer.Sprintf("%.0f", r)
}

// TireDiameter returns the overall diameter in inches for a tire of the given
// width (mm), aspect ratio (percent) and rim diameter (inches).
func TireDiameter(widthMM, aspectRatio, rimInches float64) float64 {
	sidewall := (widthMM * (aspectRatio / 100)) / 25.4
	return sidewall*2 + rimInches
}

// ParseTireSize parses notation like "P225/60R16" or "255/40ZR19" and returns the
// overall diameter in inches.
func ParseTireSize(size string) (float64, error) {
	s := strings.ToUpper(strings.TrimSpace(size))
	s = strings.TrimLeft(s, "PLT")
	s = strings.Replace(s, "ZR", "R", 1)

	var width, aspect, rim float64
	if _, err := fmt.Sscanf(s, "%f/%fR%f", &width, &aspect, &rim); err != nil {
		return 0, errors.Wrapf(err, "invalid tire size %q", size)
	}
	if width <= 0 || aspect <= 0 || rim <= 0 {
		return 0, errors.Errorf("invalid tire size %q", size)
	}
	return TireDiameter(width, aspect, rim), nil
}

var gearLabels = []string{"1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th", "9th", "10th"}

// GearLabel returns the ordinal label of a 1-indexed gear.
func GearLabel(gear int) string {
	if gear >= 1 && gear <= len(gearLabels) {
		return gearLabels[gear-1]
	}
	return fmt.Sprintf("%dth", gear)
}

// MaxGaugeRPM is the top of the gauge scale.
const MaxGaugeRPM = 9000

// NeedleAngle maps rpm onto a 270° gauge sweep: -135° at 0 RPM, +135° at MaxGaugeRPM.
// Values outside the scale are pinned to its ends.
func NeedleAngle(rpm float64) float64 {
	rpm = math.Min(math.Max(rpm, 0), MaxGaugeRPM)
	return -135 + rpm/MaxGaugeRPM*270
}

// RevMatchRPM is the engine speed needed after shifting from a gear with ratio `from`
// to one with ratio `to` at constant road speed.
func RevMatchRPM(rpm, from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	return rpm * to / from
}
