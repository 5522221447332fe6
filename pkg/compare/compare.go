package compare

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/models"
)

// Vehicle is a named spec to compare.
type Vehicle struct {
	Name string
	Spec models.VehicleSpec
}

// GearDiff is the RPM of both vehicles in one gear. A gear one of them does not have
// is reported as missing on that side.
type GearDiff struct {
	Gear     int
	RPMA     float64
	RPMB     float64
	MissingA bool
	MissingB bool
}

// Diff is RPMB - RPMA, or 0 when either side is missing.
func (g GearDiff) Diff() float64 {
	if g.MissingA || g.MissingB {
		return 0
	}
	return g.RPMB - g.RPMA
}

// Comparison holds the per-gear RPM of two vehicles at one speed.
type Comparison struct {
	A, B  Vehicle
	Speed float64
	Gears []GearDiff
}

// Vehicles compares a and b gear by gear at speed.
func Vehicles(a, b Vehicle, speed float64) Comparison {
	n := len(a.Spec.GearRatios)
	if len(b.Spec.GearRatios) > n {
		n = len(b.Spec.GearRatios)
	}

	c := Comparison{A: a, B: b, Speed: speed, Gears: make([]GearDiff, n)}
	for i := 0; i < n; i++ {
		g := GearDiff{Gear: i + 1}
		g.RPMA, g.MissingA = rpmIn(a.Spec, i, speed)
		g.RPMB, g.MissingB = rpmIn(b.Spec, i, speed)
		c.Gears[i] = g
	}
	return c
}

func rpmIn(spec models.VehicleSpec, gear int, speed float64) (float64, bool) {
	if gear >= len(spec.GearRatios) {
		return 0, true
	}
	return formula.CalculateRPM(speed, spec.GearRatios[gear], spec.AxleRatio, spec.TireDiameter), false
}

// MaxAbsDiff returns the largest absolute per-gear difference.
func (c Comparison) MaxAbsDiff() float64 {
	maxAbs := 0.0
	for _, g := range c.Gears {
		abs := g.Diff()
		if abs < 0 {
			abs = -abs
		}
		if abs > maxAbs {
			maxAbs = abs
		}
	}
	return maxAbs
}

// Display prints the comparison as a table plus a difference bar.
func Display(c Comparison, thresholds formula.Thresholds) {
	pterm.DefaultHeader.WithFullWidth().Println("Vehicle Comparison")
	pterm.Info.Printf("%s vs %s at %.0f MPH\n", c.A.Name, c.B.Name, c.Speed)

	data := pterm.TableData{{"Gear", c.A.Name, c.B.Name, "Difference"}}
	for _, g := range c.Gears {
		data = append(data, []string{
			formula.GearLabel(g.Gear),
			rpmCell(g.RPMA, g.MissingA, thresholds),
			rpmCell(g.RPMB, g.MissingB, thresholds),
			diffCell(g),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	pterm.Println("\nDifference by gear (B - A):")
	visualizeDifferences(c)
}

func rpmCell(rpm float64, missing bool, thresholds formula.Thresholds) string {
	if missing {
		return pterm.FgGray.Sprint("-")
	}
	return zoneColor(formula.ClassifyZone(rpm, thresholds)).Sprint(formula.FormatRPM(rpm))
}

func diffCell(g GearDiff) string {
	if g.MissingA || g.MissingB {
		return pterm.FgGray.Sprint("-")
	}
	d := g.Diff()
	if d > 0 {
		return "+" + formula.FormatRPM(d)
	}
	if d < 0 {
		return "-" + formula.FormatRPM(-d)
	}
	return "0"
}

func zoneColor(z formula.Zone) pterm.Color {
	switch z {
	case formula.ZoneRed:
		return pterm.FgRed
	case formula.ZoneYellow:
		return pterm.FgYellow
	default:
		return pterm.FgGreen
	}
}

func visualizeDifferences(c Comparison) {
	var result strings.Builder
	maxAbs := c.MaxAbsDiff()

	result.WriteString("  Gear → |")
	for _, g := range c.Gears {
		result.WriteString(fmt.Sprintf("%-4d", g.Gear))
	}
	result.WriteString("\n")
	result.WriteString("         |" + strings.Repeat("-", len(c.Gears)*4) + "\n")
	result.WriteString("         |")
	for _, g := range c.Gears {
		if g.MissingA || g.MissingB {
			result.WriteString(pterm.FgGray.Sprint("?   "))
			continue
		}
		result.WriteString(getDiffSymbol(g.Diff(), maxAbs))
	}
	result.WriteString("\n")

	// Legend
	result.WriteString("\nLegend: ")
	result.WriteString(pterm.FgBlue.Sprint("▼▼") + " Much Lower  ")
	result.WriteString(pterm.FgCyan.Sprint("▼ ") + " Lower  ")
	result.WriteString(pterm.FgGray.Sprint("··") + " Same  ")
	result.WriteString(pterm.FgYellow.Sprint("▲ ") + " Higher  ")
	result.WriteString(pterm.FgRed.Sprint("▲▲") + " Much Higher")

	pterm.DefaultBox.Println(result.String())
}

func getDiffSymbol(val, maxAbs float64) string {
	if val == 0 || maxAbs == 0 {
		return pterm.FgGray.Sprint("··  ")
	}

	normalized := val / maxAbs

	if normalized < -0.5 {
		return pterm.FgBlue.Sprint("▼▼  ")
	} else if normalized < -0.1 {
		return pterm.FgCyan.Sprint("▼   ")
	} else if normalized > 0.5 {
		return pterm.FgRed.Sprint("▲▲  ")
	} else if normalized > 0.1 {
		return pterm.FgYellow.Sprint("▲   ")
	}

	return pterm.FgGray.Sprint("·   ")
}
