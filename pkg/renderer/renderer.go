package renderer

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/tosih/rpm-simulator/pkg/catalog"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/guide"
	"github.com/tosih/rpm-simulator/pkg/models"
	"github.com/tosih/rpm-simulator/pkg/store"
	"github.com/tosih/rpm-simulator/pkg/sweep"
)

// gaugeWidth is the number of cells in the tachometer bar.
const gaugeWidth = 45

// RenderState displays the gauge and the calculation behind it.
func RenderState(s store.State) {
	title := fmt.Sprintf("%s | %s gear | %.0f MPH", Title(s), formula.GearLabel(s.SelectedGear), s.Speed)

	pterm.DefaultBox.WithTitle(title).WithTitleTopLeft().Println(BuildGaugeString(s))
	pterm.Println()
	pterm.DefaultBox.WithTitle("Current Calculation").WithTitleTopLeft().Println(BuildCalculationString(s))
}

// Title names the vehicle behind a state.
func Title(s store.State) string {
	id := s.SelectedVehicle
	if s.IsCustomMode || id.IsEmpty() {
		return "Custom vehicle"
	}
	parts := []string{}
	if id.Year != 0 {
		parts = append(parts, fmt.Sprint(id.Year))
	}
	for _, p := range []string{id.Make, id.Model, id.Trim} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// BuildGaugeString draws a horizontal tachometer with the zones colored in.
func BuildGaugeString(s store.State) string {
	var result strings.Builder

	result.WriteString(zoneStyle(s.Zone).Sprintf("%s RPM", s.FormattedRPM))
	result.WriteString(fmt.Sprintf("  (%s zone)\n\n", strings.ToUpper(string(s.Zone))))

	step := float64(formula.MaxGaugeRPM) / gaugeWidth
	filled := int(clamp(s.RPM, 0, formula.MaxGaugeRPM) / step)
	for i := 0; i < gaugeWidth; i++ {
		cellRPM := float64(i) * step
		zone := formula.ClassifyZone(cellRPM, s.Thresholds)
		if i < filled {
			result.WriteString(getGaugeBlock(zone, true))
		} else {
			result.WriteString(getGaugeBlock(zone, false))
		}
	}
	result.WriteString("\n")

	// Scale in thousands
	cellsPerK := float64(gaugeWidth) / (formula.MaxGaugeRPM / 1000)
	var scale strings.Builder
	for k := 0; k <= formula.MaxGaugeRPM/1000; k++ {
		pos := int(float64(k) * cellsPerK)
		for scale.Len() < pos {
			scale.WriteString(" ")
		}
		scale.WriteString(fmt.Sprint(k))
	}
	result.WriteString(scale.String() + "   x1000\n")

	result.WriteString("\nLegend: ")
	result.WriteString(pterm.FgGreen.Sprint("█") + " Normal  ")
	result.WriteString(pterm.FgYellow.Sprint("█") + fmt.Sprintf(" From %s  ", formula.FormatRPM(s.Thresholds.Yellow)))
	result.WriteString(pterm.FgRed.Sprint("█") + fmt.Sprintf(" Redline %s", formula.FormatRPM(s.Thresholds.Red)))
	return result.String()
}

// BuildCalculationString shows the formula with the current values filled in.
func BuildCalculationString(s store.State) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Selected gear: %s (%.2f)\n", formula.GearLabel(s.SelectedGear), s.CurrentGearRatio))
	result.WriteString("Formula:       [(AR × VS × TR × 336.13) / TD]\n")
	result.WriteString(fmt.Sprintf("               [(%g × %g × %.2f × %g) / %g]\n",
		s.AxleRatio, s.Speed, s.CurrentGearRatio, formula.ConversionConstant, s.TireDiameter))
	result.WriteString("               = " + zoneStyle(s.Zone).Sprintf("%s RPM", s.FormattedRPM) + "\n")

	if match := revMatchLine(s); match != "" {
		result.WriteString("\n" + match + "\n")
	}

	result.WriteString("\nAR = Axle Ratio  VS = Vehicle Speed  TR = Transmission Ratio  TD = Tire Diameter")
	return result.String()
}

func revMatchLine(s store.State) string {
	parts := []string{}
	i := s.SelectedGear - 1
	if i > 0 && i < len(s.GearRatios) {
		rpm := formula.RevMatchRPM(s.RPM, s.CurrentGearRatio, s.GearRatios[i-1])
		parts = append(parts, fmt.Sprintf("down to %s: %s", formula.GearLabel(s.SelectedGear-1), formula.FormatRPM(rpm)))
	}
	if i >= 0 && i+1 < len(s.GearRatios) {
		rpm := formula.RevMatchRPM(s.RPM, s.CurrentGearRatio, s.GearRatios[i+1])
		parts = append(parts, fmt.Sprintf("up to %s: %s", formula.GearLabel(s.SelectedGear+1), formula.FormatRPM(rpm)))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Rev match " + strings.Join(parts, ", ")
}

func getGaugeBlock(zone formula.Zone, lit bool) string {
	if !lit {
		return pterm.FgGray.Sprint("░")
	}
	return zoneStyle(zone).Sprint("█")
}

func zoneStyle(zone formula.Zone) *pterm.Style {
	switch zone {
	case formula.ZoneRed:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case formula.ZoneYellow:
		return pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGreen, pterm.Bold)
	}
}

func getHeatmapBlock(zone formula.Zone) *pterm.Style {
	switch zone {
	case formula.ZoneRed:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	case formula.ZoneYellow:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	default:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgBlack)
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ListPresets displays the built-in presets in a table.
func ListPresets() {
	pterm.DefaultHeader.WithFullWidth().Println("Vehicle Presets")

	data := [][]string{
		{"Key", "Name", "Gears", "Ratios", "Axle", "Tire"},
	}

	for _, p := range models.Presets {
		tire := fmt.Sprintf("%.1f\"", p.Spec.TireDiameter)
		if p.Tire != "" {
			tire = fmt.Sprintf("%s (%s)", tire, p.Tire)
		}
		data = append(data, []string{
			p.Key,
			p.Name,
			fmt.Sprint(p.Spec.GearCount),
			formatRatios(p.Spec.GearRatios),
			fmt.Sprintf("%.2f", p.Spec.AxleRatio),
			tire,
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// ListReferences displays common axle ratios and tire sizes.
func ListReferences() {
	pterm.DefaultSection.Println("Common Axle Ratios")
	axles := [][]string{{"Ratio", "Use"}}
	for _, a := range models.CommonAxleRatios {
		axles = append(axles, []string{fmt.Sprintf("%.2f", a.Ratio), a.Description})
	}
	pterm.DefaultTable.WithHasHeader().WithData(axles).Render()

	pterm.DefaultSection.Println("Common Tire Sizes")
	tires := [][]string{{"Size", "Diameter"}}
	for _, t := range models.CommonTireSizes {
		tires = append(tires, []string{t.Size, fmt.Sprintf("%.1f\"", t.Diameter)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(tires).Render()
}

func formatRatios(ratios []float64) string {
	parts := make([]string, len(ratios))
	for i, r := range ratios {
		parts[i] = fmt.Sprintf("%.2f", r)
	}
	return strings.Join(parts, " ")
}

// ListCatalog displays the models, years and trims of a loaded make.
func ListCatalog(c *catalog.MakeCatalog) {
	pterm.DefaultHeader.WithFullWidth().Printf("%s (%d vehicles)", c.Make, c.VehicleCount)

	data := [][]string{
		{"Model", "Year", "Trim", "Transmission", "ID"},
	}
	for _, model := range c.Models() {
		for _, year := range c.Years(model) {
			for _, trim := range c.Trims(model, year) {
				data = append(data, []string{model, fmt.Sprint(year), trim.Name, trim.TransmissionDescription, trim.ID})
			}
		}
	}

	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// ListMakes displays the available makes as a bullet list.
func ListMakes(makes []string) {
	pterm.DefaultSection.Println("Available Makes")
	items := make([]pterm.BulletListItem, 0, len(makes))
	for _, m := range makes {
		items = append(items, pterm.BulletListItem{Level: 0, Text: m})
	}
	pterm.DefaultBulletList.WithItems(items).Render()
}

// RenderSweep displays an RPM table colored by zone and the shift points.
func RenderSweep(t sweep.Table) {
	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgDarkGray)).
		WithTextStyle(pterm.NewStyle(pterm.FgLightWhite)).
		Println("RPM Sweep - " + t.Name)

	pterm.Println()
	pterm.DefaultBox.WithTitle(fmt.Sprintf("Axle %.2f | Tire %.1f\"", t.Spec.AxleRatio, t.Spec.TireDiameter)).
		WithTitleTopLeft().Println(BuildSweepString(t))

	data := [][]string{{"Gear", "Ratio", "Leaves green at"}}
	for _, p := range t.ShiftPoints() {
		at := "-"
		if p.Found {
			at = fmt.Sprintf("%.0f MPH (%s RPM)", p.Speed, formula.FormatRPM(p.RPM))
		}
		data = append(data, []string{formula.GearLabel(p.Gear), fmt.Sprintf("%.2f", t.Spec.GearRatios[p.Gear-1]), at})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// BuildSweepString creates the speed-by-gear grid of a sweep.
func BuildSweepString(t sweep.Table) string {
	var result strings.Builder

	// Header
	result.WriteString("  MPH ↓ |")
	for gear := range t.Spec.GearRatios {
		result.WriteString(fmt.Sprintf("%7s", formula.GearLabel(gear+1)))
	}
	result.WriteString("\n")
	result.WriteString("        |" + strings.Repeat("-", len(t.Spec.GearRatios)*7) + "\n")

	// Data rows
	for _, row := range t.Rows {
		result.WriteString(fmt.Sprintf("  %5.0f |", row.Speed))
		for i, rpm := range row.RPM {
			result.WriteString(getHeatmapBlock(row.Zones[i]).Sprintf("%7.0f", rpm))
		}
		result.WriteString("\n")
	}
	return result.String()
}

// RenderGuide prints a guide topic.
func RenderGuide(t guide.Topic) {
	pterm.DefaultHeader.WithFullWidth().Println(t.Title)
	for _, s := range t.Sections {
		pterm.Println()
		pterm.DefaultSection.Println(s.Title)
		pterm.Println(formatContent(s.Content))
	}
}

// ListGuide displays the guide's table of contents.
func ListGuide(topics []guide.Topic) {
	data := [][]string{{"Key", "Topic", "Sections"}}
	for _, t := range topics {
		data = append(data, []string{t.Key, t.Title, fmt.Sprint(len(t.Sections))})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// formatContent turns **bold** markers into terminal bold.
func formatContent(content string) string {
	parts := strings.Split(content, "**")
	var result strings.Builder
	for i, p := range parts {
		if i%2 == 1 {
			result.WriteString(pterm.Bold.Sprint(p))
		} else {
			result.WriteString(p)
		}
	}
	return result.String()
}
