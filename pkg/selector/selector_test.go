package selector

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/rpm-simulator/pkg/catalog"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/models"
	"github.com/tosih/rpm-simulator/pkg/store"
)

// gatedLoader answers LoadMake only once the make's gate is released.
type gatedLoader struct {
	gates    map[string]chan struct{}
	catalogs map[string]*catalog.MakeCatalog
}

func newGatedLoader(names ...string) *gatedLoader {
	l := &gatedLoader{
		gates:    make(map[string]chan struct{}),
		catalogs: make(map[string]*catalog.MakeCatalog),
	}
	for _, name := range names {
		l.gates[name] = make(chan struct{})
		l.catalogs[name] = &catalog.MakeCatalog{
			Make:     name,
			Vehicles: []catalog.Vehicle{{Model: name + " Coupe", Year: 2020}},
		}
	}
	return l
}

func (l *gatedLoader) ListMakes() []string { return []string{"Alpha", "Bravo"} }

func (l *gatedLoader) LoadMake(ctx context.Context, name string) (*catalog.MakeCatalog, error) {
	gate, ok := l.gates[name]
	if !ok {
		return nil, errors.Wrapf(catalog.ErrMakeNotFound, "%q", name)
	}
	select {
	case <-gate:
		return l.catalogs[name], nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("load did not finish")
	}
}

func newSimulator() *store.Simulator {
	return store.New(store.NewMemoryStorage(), formula.DefaultThresholds)
}

func newBundledSelector(t *testing.T) (*Selector, *store.Simulator) {
	t.Helper()
	r, err := catalog.NewRepository(catalog.Bundled())
	require.NoError(t, err)
	sim := newSimulator()
	return New(r, sim), sim
}

func TestSelectMake_StaleLoadIsDiscarded(t *testing.T) {
	loader := newGatedLoader("Alpha", "Bravo")
	sel := New(loader, newSimulator())
	ctx := context.Background()

	first := sel.SelectMake(ctx, "Alpha")
	second := sel.SelectMake(ctx, "Bravo")

	view := sel.View()
	assert.True(t, view.Loading)
	assert.Empty(t, view.Models)

	close(loader.gates["Bravo"])
	wait(t, second)
	close(loader.gates["Alpha"])
	wait(t, first)

	view = sel.View()
	assert.False(t, view.Loading)
	assert.Equal(t, "Bravo", view.Identity.Make)
	assert.Equal(t, []string{"Bravo Coupe"}, view.Models)
}

func TestSelectMake_LoadingHidesPreviousLists(t *testing.T) {
	loader := newGatedLoader("Alpha", "Bravo")
	sel := New(loader, newSimulator())
	ctx := context.Background()

	close(loader.gates["Alpha"])
	wait(t, sel.SelectMake(ctx, "Alpha"))
	require.Equal(t, []string{"Alpha Coupe"}, sel.View().Models)

	pending := sel.SelectMake(ctx, "Bravo")
	view := sel.View()
	assert.True(t, view.Loading)
	assert.Empty(t, view.Models)
	assert.NotNil(t, view.Models)

	close(loader.gates["Bravo"])
	wait(t, pending)
	assert.Equal(t, []string{"Bravo Coupe"}, sel.View().Models)
}

func TestSelectMake_FailureDegradesToEmptyModels(t *testing.T) {
	sel := New(newGatedLoader(), newSimulator())
	wait(t, sel.SelectMake(context.Background(), "Yugo"))

	view := sel.View()
	assert.False(t, view.Loading)
	assert.Equal(t, "Yugo", view.Identity.Make)
	assert.Empty(t, view.Models)
	assert.True(t, errors.Is(sel.SelectModel("45"), ErrMakeNotLoaded))
}

func TestSelectMake_Cancelled(t *testing.T) {
	sel := New(newGatedLoader("Alpha"), newSimulator())
	ctx, cancel := context.WithCancel(context.Background())
	done := sel.SelectMake(ctx, "Alpha")
	cancel()
	wait(t, done)

	assert.False(t, sel.View().Loading)
	assert.Empty(t, sel.View().Models)
}

func TestSelectMake_LeavesCustomMode(t *testing.T) {
	sel, sim := newBundledSelector(t)
	require.True(t, sim.State().IsCustomMode)

	wait(t, sel.SelectMake(context.Background(), "Mazda"))
	state := sim.State()
	assert.False(t, state.IsCustomMode)
	assert.Equal(t, models.VehicleIdentity{Make: "Mazda"}, state.SelectedVehicle)
}

func TestFullSelection(t *testing.T) {
	sel, sim := newBundledSelector(t)
	wait(t, sel.SelectMake(context.Background(), "Mazda"))

	view := sel.View()
	assert.Equal(t, []string{"Chevrolet", "Ford", "Honda", "Mazda", "Subaru", "Toyota"}, view.Makes)
	assert.Equal(t, []string{"MX-5 Miata", "Mazda3"}, view.Models)
	assert.Empty(t, view.Years)

	require.NoError(t, sel.SelectModel("MX-5 Miata"))
	assert.Equal(t, []int{2023, 2019}, sel.View().Years)

	require.NoError(t, sel.SelectYear(2019))
	trims := sel.View().Trims
	require.Len(t, trims, 2)
	assert.Equal(t, "Sport", trims[0].Name)

	require.NoError(t, sel.SelectTrim("Sport"))
	state := sim.State()
	assert.Equal(t, models.VehicleIdentity{Make: "Mazda", Model: "MX-5 Miata", Year: 2019, Trim: "Sport"}, state.SelectedVehicle)
	assert.False(t, state.IsCustomMode)
	assert.Equal(t, []float64{3.815, 2.260, 1.640, 1.177, 1.000, 0.832}, state.GearRatios)
	assert.Equal(t, 2.866, state.AxleRatio)
	assert.Equal(t, 23.7, state.TireDiameter)
	assert.Equal(t, 4, state.SelectedGear)
}

func TestSelectModel_ResetsDownstream(t *testing.T) {
	sel, sim := newBundledSelector(t)
	wait(t, sel.SelectMake(context.Background(), "Ford"))
	require.NoError(t, sel.SelectModel("Mustang"))
	require.NoError(t, sel.SelectYear(2018))
	require.NoError(t, sel.SelectTrim("GT"))

	require.NoError(t, sel.SelectModel("Focus ST"))
	assert.Equal(t, models.VehicleIdentity{Make: "Ford", Model: "Focus ST"}, sim.State().SelectedVehicle)
	assert.Empty(t, sel.View().Trims)

	require.NoError(t, sel.SelectYear(2017))
	assert.Len(t, sel.View().Trims, 1)
}

func TestSelect_OutOfOrder(t *testing.T) {
	sel, _ := newBundledSelector(t)
	assert.True(t, errors.Is(sel.SelectModel("Mustang"), ErrMakeNotLoaded))

	wait(t, sel.SelectMake(context.Background(), "Ford"))
	assert.True(t, errors.Is(sel.SelectYear(2018), ErrNoModel))
	assert.True(t, errors.Is(sel.SelectTrim("GT"), ErrNoModel))

	require.NoError(t, sel.SelectModel("Mustang"))
	assert.True(t, errors.Is(sel.SelectTrim("GT"), ErrNoYear))

	require.NoError(t, sel.SelectYear(2018))
	assert.True(t, errors.Is(sel.SelectTrim("Shelby"), ErrTrimNotFound))
}

func TestCustomModeClearsView(t *testing.T) {
	sel, sim := newBundledSelector(t)
	wait(t, sel.SelectMake(context.Background(), "Honda"))
	require.NotEmpty(t, sel.View().Models)

	sim.SetAxleRatio(4.4)
	view := sel.View()
	assert.True(t, view.Identity.IsEmpty())
	assert.Empty(t, view.Models)
}

func TestResume(t *testing.T) {
	storage := store.NewMemoryStorage()
	r, err := catalog.NewRepository(catalog.Bundled())
	require.NoError(t, err)

	sim := store.New(storage, formula.DefaultThresholds)
	sel := New(r, sim)
	wait(t, sel.SelectMake(context.Background(), "Subaru"))
	require.NoError(t, sel.SelectModel("WRX"))

	restored := New(r, store.New(storage, formula.DefaultThresholds))
	assert.True(t, restored.View().Identity.Model == "WRX")
	assert.Empty(t, restored.View().Models)

	wait(t, restored.Resume(context.Background()))
	view := restored.View()
	assert.Equal(t, models.VehicleIdentity{Make: "Subaru", Model: "WRX"}, view.Identity)
	assert.NotEmpty(t, view.Models)
	assert.NotEmpty(t, view.Years)
}

func TestResume_NothingSelected(t *testing.T) {
	sel := New(newGatedLoader(), newSimulator())
	wait(t, sel.Resume(context.Background()))
	assert.False(t, sel.View().Loading)
}
