package editor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/tosih/rpm-simulator/pkg/clock"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/models"
	"github.com/tosih/rpm-simulator/pkg/renderer"
	"github.com/tosih/rpm-simulator/pkg/selector"
	"github.com/tosih/rpm-simulator/pkg/store"
)

const (
	minScale = 0.5
	maxScale = 2.0
)

// CreateBackup creates a timestamped backup of the file
func CreateBackup(filename string, clk clock.Clock) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}

	timestamp := clk.Now().Format("20060102_150405")
	backupName := filename + ".backup_" + timestamp
	err = os.WriteFile(backupName, data, 0644)
	if err != nil {
		return "", err
	}

	return backupName, nil
}

// ScaleRatios multiplies every ratio, keeping the multiplier within a sane range.
func ScaleRatios(ratios []float64, multiplier float64) ([]float64, error) {
	if multiplier < minScale || multiplier > maxScale {
		return nil, errors.Errorf("multiplier %.2f out of range (%.1f-%.1f)", multiplier, minScale, maxScale)
	}
	scaled := make([]float64, len(ratios))
	for i, r := range ratios {
		scaled[i] = r * multiplier
	}
	return scaled, nil
}

// ScaleGearRatios applies ScaleRatios to the simulator's gearbox.
func ScaleGearRatios(sim *store.Simulator, multiplier float64) error {
	scaled, err := ScaleRatios(sim.State().GearRatios, multiplier)
	if err != nil {
		return err
	}
	for i, r := range scaled {
		if err := sim.SetGearRatio(i, r); err != nil {
			return err
		}
	}
	return nil
}

// ParseTireInput accepts a diameter in inches or a tire size like 225/45R17.
func ParseTireInput(input string) (float64, error) {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "/") {
		return formula.ParseTireSize(input)
	}
	d, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid tire diameter %q", input)
	}
	if d <= 0 {
		return 0, errors.Errorf("tire diameter must be positive, got %g", d)
	}
	return d, nil
}

// Editor drives a simulator from interactive prompts.
type Editor struct {
	sim *store.Simulator
	sel *selector.Selector
	clk clock.Clock
	// statePath is the file holding persisted state, backed up before a reset.
	// Empty when the storage is not file based.
	statePath string
}

func New(sim *store.Simulator, sel *selector.Selector, clk clock.Clock, statePath string) *Editor {
	return &Editor{sim: sim, sel: sel, clk: clk, statePath: statePath}
}

// InteractiveEdit provides an interactive menu for changing the simulation until
// the user exits or ctx is cancelled.
func (e *Editor) InteractiveEdit(ctx context.Context) {
	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("INTERACTIVE EDIT MODE")

	options := []string{
		"Set Speed",
		"Select Gear",
		"Edit Gear Ratio",
		"Set Gear Count",
		"Set Axle Ratio",
		"Set Tire Diameter",
		"Scale All Gear Ratios",
		"Apply Preset",
		"Select Vehicle",
		"Reset",
		"Exit",
	}

	for ctx.Err() == nil {
		renderer.RenderState(e.sim.State())

		selectedOption, err := pterm.DefaultInteractiveSelect.
			WithOptions(options).
			WithDefaultOption(options[0]).
			Show("Select what to edit:")
		if err != nil {
			glog.Warningf("Prompt failed: %s", err)
			return
		}

		switch selectedOption {
		case "Set Speed":
			err = e.editSpeed()
		case "Select Gear":
			err = e.selectGear()
		case "Edit Gear Ratio":
			err = e.editGearRatio()
		case "Set Gear Count":
			err = e.editGearCount()
		case "Set Axle Ratio":
			err = e.editAxleRatio()
		case "Set Tire Diameter":
			err = e.editTireDiameter()
		case "Scale All Gear Ratios":
			err = e.scaleRatios()
		case "Apply Preset":
			err = e.applyPreset()
		case "Select Vehicle":
			err = e.selectVehicle(ctx)
		case "Reset":
			err = e.reset()
		case "Exit":
			pterm.Info.Println("Exiting edit mode.")
			return
		}
		if err != nil {
			pterm.Error.Println(err)
		}
	}
}

func promptFloat(prompt string) (float64, error) {
	s, err := pterm.DefaultInteractiveTextInput.Show(prompt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, errors.Wrapf(err, "invalid number %q", s)
}

func (e *Editor) editSpeed() error {
	v, err := promptFloat("Enter speed in MPH (e.g., 65)")
	if err != nil {
		return err
	}
	if v < 0 {
		return errors.Errorf("speed must not be negative, got %g", v)
	}
	e.sim.SetSpeed(v)
	return nil
}

func gearOptions(count int) []string {
	labels := make([]string, count)
	for i := range labels {
		labels[i] = formula.GearLabel(i + 1)
	}
	return labels
}

func (e *Editor) promptGear(prompt string) (int, error) {
	labels := gearOptions(e.sim.State().GearCount)
	selected, err := pterm.DefaultInteractiveSelect.WithOptions(labels).Show(prompt)
	if err != nil {
		return 0, err
	}
	for i, l := range labels {
		if l == selected {
			return i + 1, nil
		}
	}
	return 0, errors.Errorf("unknown gear %q", selected)
}

func (e *Editor) selectGear() error {
	gear, err := e.promptGear("Select gear:")
	if err != nil {
		return err
	}
	return e.sim.SetSelectedGear(gear)
}

func (e *Editor) editGearRatio() error {
	gear, err := e.promptGear("Select gear to edit:")
	if err != nil {
		return err
	}
	pterm.Info.Printf("Current %s ratio: %.3f\n", formula.GearLabel(gear), e.sim.State().GearRatios[gear-1])
	v, err := promptFloat("Enter new ratio")
	if err != nil {
		return err
	}
	if v <= 0 {
		return errors.Errorf("ratio must be positive, got %g", v)
	}
	return e.sim.SetGearRatio(gear-1, v)
}

func (e *Editor) editGearCount() error {
	v, err := promptFloat(fmt.Sprintf("Enter number of gears (1-%d)", models.MaxGears))
	if err != nil {
		return err
	}
	return e.sim.SetGearCount(int(v))
}

func (e *Editor) editAxleRatio() error {
	options := make([]string, 0, len(models.CommonAxleRatios)+1)
	for _, a := range models.CommonAxleRatios {
		options = append(options, fmt.Sprintf("%.2f - %s", a.Ratio, a.Description))
	}
	options = append(options, "Other")

	selected, err := pterm.DefaultInteractiveSelect.WithOptions(options).Show("Select axle ratio:")
	if err != nil {
		return err
	}
	for i, a := range models.CommonAxleRatios {
		if selected == options[i] {
			e.sim.SetAxleRatio(a.Ratio)
			return nil
		}
	}

	v, err := promptFloat("Enter axle ratio (e.g., 3.73)")
	if err != nil {
		return err
	}
	if v <= 0 {
		return errors.Errorf("axle ratio must be positive, got %g", v)
	}
	e.sim.SetAxleRatio(v)
	return nil
}

func (e *Editor) editTireDiameter() error {
	s, err := pterm.DefaultInteractiveTextInput.Show("Enter tire diameter in inches or a size (e.g., 26.7 or 225/45R17)")
	if err != nil {
		return err
	}
	d, err := ParseTireInput(s)
	if err != nil {
		return err
	}
	e.sim.SetTireDiameter(d)
	return nil
}

func (e *Editor) scaleRatios() error {
	pterm.Warning.Println("This modifies ALL gear ratios!")
	m, err := promptFloat("Enter multiplier (e.g., 1.1 for +10%, 0.9 for -10%)")
	if err != nil {
		return err
	}
	if _, err := ScaleRatios(nil, m); err != nil {
		return err
	}

	result, _ := pterm.DefaultInteractiveConfirm.Show(fmt.Sprintf("Multiply every ratio by %.2f?", m))
	if !result {
		pterm.Info.Println("Cancelled.")
		return nil
	}
	return ScaleGearRatios(e.sim, m)
}

func (e *Editor) applyPreset() error {
	names := make([]string, len(models.Presets))
	for i, p := range models.Presets {
		names[i] = p.Name
	}
	selected, err := pterm.DefaultInteractiveSelect.WithOptions(names).Show("Select preset:")
	if err != nil {
		return err
	}
	for _, p := range models.Presets {
		if p.Name == selected {
			return e.sim.ApplyPreset(p.Key)
		}
	}
	return errors.Wrapf(store.ErrUnknownPreset, "%q", selected)
}

func (e *Editor) selectVehicle(ctx context.Context) error {
	view := e.sel.View()
	if len(view.Makes) == 0 {
		return errors.New("no makes available")
	}
	makeName, err := pterm.DefaultInteractiveSelect.WithOptions(view.Makes).Show("Select make:")
	if err != nil {
		return err
	}

	spinner, _ := pterm.DefaultSpinner.Start("Loading " + makeName + "...")
	select {
	case <-e.sel.SelectMake(ctx, makeName):
	case <-ctx.Done():
		spinner.Fail("Cancelled")
		return ctx.Err()
	}
	view = e.sel.View()
	if len(view.Models) == 0 {
		spinner.Fail("No vehicles for " + makeName)
		return nil
	}
	spinner.Success("Loaded " + makeName)

	model, err := pterm.DefaultInteractiveSelect.WithOptions(view.Models).Show("Select model:")
	if err != nil {
		return err
	}
	if err := e.sel.SelectModel(model); err != nil {
		return err
	}

	years := e.sel.View().Years
	yearOptions := make([]string, len(years))
	for i, y := range years {
		yearOptions[i] = strconv.Itoa(y)
	}
	yearStr, err := pterm.DefaultInteractiveSelect.WithOptions(yearOptions).Show("Select year:")
	if err != nil {
		return err
	}
	year, _ := strconv.Atoi(yearStr)
	if err := e.sel.SelectYear(year); err != nil {
		return err
	}

	trims := e.sel.View().Trims
	trimOptions := make([]string, len(trims))
	for i, t := range trims {
		trimOptions[i] = t.Name
	}
	trim, err := pterm.DefaultInteractiveSelect.WithOptions(trimOptions).Show("Select trim:")
	if err != nil {
		return err
	}
	return e.sel.SelectTrim(trim)
}

func (e *Editor) reset() error {
	result, _ := pterm.DefaultInteractiveConfirm.Show("Reset all parameters to defaults?")
	if !result {
		pterm.Info.Println("Cancelled.")
		return nil
	}

	if e.statePath != "" {
		if _, err := os.Stat(e.statePath); err == nil {
			backup, err := CreateBackup(e.statePath, e.clk)
			if err != nil {
				return errors.Wrap(err, "failed to create backup")
			}
			pterm.Success.Printf("Backup created: %s\n", backup)
		}
	}

	e.sim.Reset()
	pterm.Success.Println("Simulator reset.")
	return nil
}
