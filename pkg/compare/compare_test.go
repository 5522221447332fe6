package compare

import (
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/models"
)

func preset(t *testing.T, key string) Vehicle {
	t.Helper()
	p, ok := models.FindPreset(key)
	require.True(t, ok)
	return Vehicle{Name: p.Name, Spec: p.Spec}
}

func TestVehicles(t *testing.T) {
	miata := preset(t, "miata")
	vette := preset(t, "corvette")
	c := Vehicles(miata, vette, 60)

	require.Len(t, c.Gears, 7)
	for i, g := range c.Gears[:6] {
		assert.Equal(t, i+1, g.Gear)
		assert.False(t, g.MissingA)
		assert.Equal(t, formula.CalculateRPM(60, miata.Spec.GearRatios[i], miata.Spec.AxleRatio, miata.Spec.TireDiameter), g.RPMA)
		assert.Equal(t, g.RPMB-g.RPMA, g.Diff())
	}

	seventh := c.Gears[6]
	assert.True(t, seventh.MissingA)
	assert.False(t, seventh.MissingB)
	assert.Equal(t, 0.0, seventh.Diff())
}

func TestVehicles_Identical(t *testing.T) {
	gt := preset(t, "mustangGT")
	c := Vehicles(gt, gt, 70)
	assert.Equal(t, 0.0, c.MaxAbsDiff())
	for _, g := range c.Gears {
		assert.Equal(t, 0.0, g.Diff())
	}
}

func TestGetDiffSymbol(t *testing.T) {
	tests := []struct {
		given    float64
		expected string
	}{
		{0, pterm.FgGray.Sprint("··  ")},
		{-900, pterm.FgBlue.Sprint("▼▼  ")},
		{-300, pterm.FgCyan.Sprint("▼   ")},
		{50, pterm.FgGray.Sprint("·   ")},
		{300, pterm.FgYellow.Sprint("▲   ")},
		{1000, pterm.FgRed.Sprint("▲▲  ")},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, getDiffSymbol(test.given, 1000), "%v", test.given)
	}
}

func TestDiffCell(t *testing.T) {
	assert.Equal(t, "+1,200", diffCell(GearDiff{RPMA: 1000, RPMB: 2200}))
	assert.Equal(t, "-450", diffCell(GearDiff{RPMA: 1450, RPMB: 1000}))
	assert.Equal(t, "0", diffCell(GearDiff{RPMA: 1000, RPMB: 1000}))
}
