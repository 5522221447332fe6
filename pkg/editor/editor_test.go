package editor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/rpm-simulator/pkg/clock"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/store"
)

func TestCreateBackup(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "rpm-calculator-state.json")
	require.NoError(t, os.WriteFile(name, []byte(`{"speed":70}`), 0644))
	clk := &clock.FakeClock{CurrentTime: time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)}

	backup, err := CreateBackup(name, clk)
	require.NoError(t, err)
	assert.Equal(t, name+".backup_20240309_140507", backup)

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, `{"speed":70}`, string(data))
}

func TestCreateBackup_MissingFile(t *testing.T) {
	_, err := CreateBackup(filepath.Join(t.TempDir(), "missing.json"), clock.NewReal())
	assert.Error(t, err)
}

func TestScaleRatios(t *testing.T) {
	scaled, err := ScaleRatios([]float64{3.0, 1.0}, 1.1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3.3, 1.1}, scaled, 1e-9)

	for _, m := range []float64{0.4, 2.1, 0} {
		_, err := ScaleRatios([]float64{1}, m)
		assert.Error(t, err, "multiplier %g", m)
	}
}

func TestScaleGearRatios(t *testing.T) {
	sim := store.New(store.NewMemoryStorage(), formula.DefaultThresholds)
	before := sim.State().GearRatios

	require.NoError(t, ScaleGearRatios(sim, 0.5))
	after := sim.State()
	require.Len(t, after.GearRatios, len(before))
	for i := range before {
		assert.InDelta(t, before[i]*0.5, after.GearRatios[i], 1e-9)
	}
	assert.True(t, after.IsCustomMode)

	assert.Error(t, ScaleGearRatios(sim, 3))
	assert.Equal(t, after.GearRatios, sim.State().GearRatios)
}

func TestParseTireInput(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		err   bool
	}{
		{"26.7", 26.7, false},
		{" 25 ", 25, false},
		{"P225/60R16", 26.63, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"big", 0, true},
		{"225/60", 0, true},
	}

	for _, test := range tests {
		got, err := ParseTireInput(test.input)
		if test.err {
			assert.Error(t, err, test.input)
			continue
		}
		require.NoError(t, err, test.input)
		assert.InDelta(t, test.want, got, 0.01, test.input)
	}
}

func TestGearOptions(t *testing.T) {
	assert.Equal(t, []string{"1st", "2nd", "3rd", "4th"}, gearOptions(4))
}
