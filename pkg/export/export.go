package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/models"
	"github.com/tosih/rpm-simulator/pkg/sweep"
)

const (
	dataHeader      = "Speed\\Gear"
	ratiosPrefix    = "# Gear ratios: "
	axlePrefix      = "# Axle ratio: "
	tirePrefix      = "# Tire diameter: "
	thresholdPrefix = "# Zones: "
)

// SweepsToDir writes one CSV file per table into exportPath.
func SweepsToDir(exportPath string, tables []sweep.Table) error {
	if err := os.MkdirAll(exportPath, 0755); err != nil {
		return errors.Wrap(err, "failed to create export directory")
	}

	spinner, _ := pterm.DefaultSpinner.Start("Exporting sweeps to CSV...")

	failed := 0
	for _, t := range tables {
		csvFilename := filepath.Join(exportPath, FileName(t.Name))
		if err := writeFile(csvFilename, t); err != nil {
			spinner.Warning(fmt.Sprintf("Failed to export %s: %v", t.Name, err))
			failed++
			continue
		}
	}

	if failed > 0 {
		spinner.Fail(fmt.Sprintf("%d of %d sweeps failed", failed, len(tables)))
		return errors.Errorf("%d of %d sweeps failed to export", failed, len(tables))
	}
	spinner.Success(fmt.Sprintf("Sweeps exported to %s", exportPath))
	return nil
}

// FileName turns a table name into a CSV file name.
func FileName(name string) string {
	if name == "" {
		name = "sweep"
	}
	name = strings.ToLower(name)
	name = strings.NewReplacer(" ", "_", "/", "_", "(", "", ")", "").Replace(name)
	return name + ".csv"
}

func writeFile(filename string, t sweep.Table) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := SweepToCSV(file, t); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SweepToCSV writes t as CSV: metadata comment rows, a gear header and one row per speed.
func SweepToCSV(w io.Writer, t sweep.Table) error {
	writer := csv.NewWriter(w)

	// Write metadata as comments
	writer.Write([]string{fmt.Sprintf("# %s", t.Name)})
	writer.Write([]string{ratiosPrefix + joinFloats(t.Spec.GearRatios)})
	writer.Write([]string{axlePrefix + strconv.FormatFloat(t.Spec.AxleRatio, 'f', -1, 64)})
	writer.Write([]string{tirePrefix + strconv.FormatFloat(t.Spec.TireDiameter, 'f', -1, 64)})
	writer.Write([]string{fmt.Sprintf("%syellow %.0f, red %.0f", thresholdPrefix, t.Thresholds.Yellow, t.Thresholds.Red)})
	writer.Write([]string{""})

	header := []string{dataHeader}
	for gear := range t.Spec.GearRatios {
		header = append(header, formula.GearLabel(gear+1))
	}
	writer.Write(header)

	for _, r := range t.Rows {
		row := []string{strconv.FormatFloat(r.Speed, 'f', -1, 64)}
		for _, rpm := range r.RPM {
			row = append(row, fmt.Sprintf("%.0f", rpm))
		}
		writer.Write(row)
	}

	writer.Flush()
	return writer.Error()
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

// ReadSpec recovers the vehicle parameters from the metadata of an exported sweep.
func ReadSpec(r io.Reader) (models.VehicleSpec, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return models.VehicleSpec{}, errors.Wrap(err, "failed to read CSV")
	}

	var spec models.VehicleSpec
	var haveRatios, haveAxle, haveTire bool
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		line := record[0]
		switch {
		case strings.HasPrefix(line, ratiosPrefix):
			for _, f := range strings.Fields(strings.TrimPrefix(line, ratiosPrefix)) {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return models.VehicleSpec{}, errors.Wrapf(err, "invalid gear ratio %q", f)
				}
				spec.GearRatios = append(spec.GearRatios, v)
			}
			haveRatios = len(spec.GearRatios) > 0
		case strings.HasPrefix(line, axlePrefix):
			spec.AxleRatio, err = strconv.ParseFloat(strings.TrimPrefix(line, axlePrefix), 64)
			if err != nil {
				return models.VehicleSpec{}, errors.Wrap(err, "invalid axle ratio")
			}
			haveAxle = true
		case strings.HasPrefix(line, tirePrefix):
			spec.TireDiameter, err = strconv.ParseFloat(strings.TrimPrefix(line, tirePrefix), 64)
			if err != nil {
				return models.VehicleSpec{}, errors.Wrap(err, "invalid tire diameter")
			}
			haveTire = true
		}
	}

	if !haveRatios || !haveAxle || !haveTire {
		return models.VehicleSpec{}, errors.New("invalid CSV format: missing vehicle metadata")
	}
	if len(spec.GearRatios) > models.MaxGears {
		return models.VehicleSpec{}, errors.Errorf("%d gears exceed the limit of %d", len(spec.GearRatios), models.MaxGears)
	}
	spec.GearCount = len(spec.GearRatios)
	return spec, nil
}
