package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/models"
	"github.com/tosih/rpm-simulator/pkg/sweep"
)

func table(t *testing.T, key string) sweep.Table {
	t.Helper()
	p, ok := models.FindPreset(key)
	require.True(t, ok)
	return sweep.Build(p.Name, p.Spec, []float64{0, 30, 60}, formula.DefaultThresholds)
}

func TestSweepToCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SweepToCSV(&buf, table(t, "mustangGT")))

	reader := csv.NewReader(strings.NewReader(buf.String()))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"# Ford Mustang GT"}, records[0])
	assert.Equal(t, []string{"# Gear ratios: 3.36 1.93 1.29 1 0.84 0.56"}, records[1])
	assert.Equal(t, []string{"# Zones: yellow 4000, red 5500"}, records[4])
	// The blank separator line is skipped by the reader.
	assert.Equal(t, []string{"Speed\\Gear", "1st", "2nd", "3rd", "4th", "5th", "6th"}, records[5])
	require.Len(t, records, 9)
	assert.Equal(t, []string{"0", "0", "0", "0", "0", "0", "0"}, records[6])
	assert.Equal(t, "60", records[8][0])
	assert.Equal(t, "2817", records[8][4])
}

func TestReadSpec_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	original := table(t, "semiTruck")
	require.NoError(t, SweepToCSV(&buf, original))

	spec, err := ReadSpec(&buf)
	require.NoError(t, err)
	assert.Equal(t, original.Spec.GearRatios, spec.GearRatios)
	assert.Equal(t, 10, spec.GearCount)
	assert.Equal(t, original.Spec.AxleRatio, spec.AxleRatio)
	assert.Equal(t, original.Spec.TireDiameter, spec.TireDiameter)
}

func TestReadSpec_Invalid(t *testing.T) {
	tests := []string{
		"Speed\\Gear,1st\n10,400\n",
		"# Gear ratios: 3.1 x\n# Axle ratio: 3.7\n# Tire diameter: 26\n",
		"# Gear ratios: 3.1\n# Axle ratio: steep\n# Tire diameter: 26\n",
		"# Gear ratios: 3.1\n# Axle ratio: 3.7\n",
	}
	for _, given := range tests {
		_, err := ReadSpec(strings.NewReader(given))
		assert.Error(t, err, given)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "toyota_gr86___subaru_brz.csv", FileName("Toyota GR86 / Subaru BRZ"))
	assert.Equal(t, "chevrolet_corvette_c7.csv", FileName("Chevrolet Corvette (C7)"))
	assert.Equal(t, "sweep.csv", FileName(""))
}

func TestSweepsToDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, SweepsToDir(dir, []sweep.Table{table(t, "miata"), table(t, "wrx")}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"mazda_mx-5_miata_nd.csv", "subaru_wrx.csv"}, names)

	f, err := os.Open(filepath.Join(dir, "subaru_wrx.csv"))
	require.NoError(t, err)
	defer f.Close()
	spec, err := ReadSpec(f)
	require.NoError(t, err)
	assert.Equal(t, 3.90, spec.AxleRatio)
}
