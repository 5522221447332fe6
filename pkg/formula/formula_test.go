package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRPM_NonPositiveTireDiameter(t *testing.T) {
	tests := []struct {
		speed, gearRatio, axleRatio, tireDiameter float64
	}{
		{60, 1.0, 3.73, 0},
		{60, 1.0, 3.73, -26.7},
		{0, 0, 0, 0},
		{120, 12.29, 4.10, -0.0001},
		{math.Inf(1), 1, 1, 0},
	}

	for _, test := range tests {
		assert.Equal(t, 0.0, CalculateRPM(test.speed, test.gearRatio, test.axleRatio, test.tireDiameter))
	}
}

func TestCalculateRPM_Formula(t *testing.T) {
	tests := []struct {
		speed, gearRatio, axleRatio, tireDiameter float64
	}{
		{60, 1.00, 3.73, 26.7},
		{100, 0.56, 3.73, 26.7},
		{35, 3.454, 2.866, 24.3},
		{12, 12.29, 3.70, 42.0},
		{0, 3.36, 3.73, 26.7},
	}

	for _, test := range tests {
		expected := (test.axleRatio * test.speed * test.gearRatio * 336.13) / test.tireDiameter
		actual := CalculateRPM(test.speed, test.gearRatio, test.axleRatio, test.tireDiameter)
		assert.Equal(t, expected, actual)
	}
}

func TestCalculateRPM_Examples(t *testing.T) {
	cruise := CalculateRPM(60, 1.00, 3.73, 26.7)
	assert.InDelta(t, 2817, cruise, 5)
	assert.Equal(t, ZoneGreen, ClassifyZone(cruise, DefaultThresholds))

	overdrive := CalculateRPM(100, 0.56, 3.73, 26.7)
	assert.InDelta(t, 2629, overdrive, 5)
	assert.Equal(t, ZoneGreen, ClassifyZone(overdrive, DefaultThresholds))
}

func TestCalculateRPM_NonFiniteResult(t *testing.T) {
	assert.Equal(t, 0.0, CalculateRPM(math.NaN(), 1, 3.73, 26.7))
	assert.Equal(t, 0.0, CalculateRPM(math.Inf(1), 1, 3.73, 26.7))
}

func TestClassifyZone(t *testing.T) {
	tests := []struct {
		given    float64
		expected Zone
	}{
		{0, ZoneGreen},
		{2500, ZoneGreen},
		{3999.99, ZoneGreen},
		{4000, ZoneYellow},
		{5499.99, ZoneYellow},
		{5500, ZoneRed},
		{9000, ZoneRed},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, ClassifyZone(test.given, DefaultThresholds), "rpm %v", test.given)
	}
}

func TestClassifyZone_Monotonic(t *testing.T) {
	rank := map[Zone]int{ZoneGreen: 0, ZoneYellow: 1, ZoneRed: 2}
	prev := ZoneGreen
	for rpm := 0.0; rpm <= 9000; rpm += 25 {
		z := ClassifyZone(rpm, DefaultThresholds)
		require.GreaterOrEqual(t, rank[z], rank[prev], "zone went backwards at %v", rpm)
		prev = z
	}
}

func TestClassifyZone_CustomThresholds(t *testing.T) {
	th := Thresholds{Yellow: 6000, Red: 7200}
	assert.Equal(t, ZoneGreen, ClassifyZone(5500, th))
	assert.Equal(t, ZoneYellow, ClassifyZone(6000, th))
	assert.Equal(t, ZoneRed, ClassifyZone(7200, th))
}

func TestFormatRPM(t *testing.T) {
	tests := []struct {
		given    float64
		expected string
	}{
		{0, "0"},
		{999.4, "999"},
		{2817.45, "2,817"},
		{2629.6, "2,630"},
		{12345.5, "12,346"},
		{-0.4, "0"},
		{1e19, "10,000,000,000,000,000,000"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, FormatRPM(test.given))
	}
}

func TestParseTireSize(t *testing.T) {
	tests := []struct {
		given    string
		expected float64
	}{
		{"P225/60R16", 26.63},
		{"255/40ZR19", 27.03},
		{"205/55R16", 24.88},
	}

	for _, test := range tests {
		d, err := ParseTireSize(test.given)
		require.NoError(t, err, test.given)
		assert.InDelta(t, test.expected, d, 0.01, test.given)
	}

	_, err := ParseTireSize("not a tire")
	assert.Error(t, err)
}

func TestGearLabel(t *testing.T) {
	assert.Equal(t, "1st", GearLabel(1))
	assert.Equal(t, "3rd", GearLabel(3))
	assert.Equal(t, "10th", GearLabel(10))
	assert.Equal(t, "11th", GearLabel(11))
}

func TestNeedleAngle(t *testing.T) {
	tests := []struct {
		given    float64
		expected float64
	}{
		{0, -135},
		{4500, 0},
		{9000, 135},
		{-50, -135},
		{12000, 135},
	}
	for _, test := range tests {
		assert.InDelta(t, test.expected, NeedleAngle(test.given), 1e-9, "%v", test.given)
	}
}

func TestRevMatchRPM(t *testing.T) {
	// 4th (1.00) at 2817 RPM down to 3rd (1.29).
	assert.InDelta(t, 3634, RevMatchRPM(2817, 1.00, 1.29), 1)
	assert.InDelta(t, 2817, RevMatchRPM(2817, 1.29, 1.29), 1e-9)
	assert.Equal(t, 0.0, RevMatchRPM(3000, 0, 1.29))
}
