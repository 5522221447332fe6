package selector

import (
	"context"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/tosih/rpm-simulator/pkg/catalog"
	"github.com/tosih/rpm-simulator/pkg/models"
	"github.com/tosih/rpm-simulator/pkg/store"
)

var (
	ErrMakeNotLoaded = errors.New("make not loaded")
	ErrNoModel       = errors.New("no model selected")
	ErrNoYear        = errors.New("no year selected")
	ErrTrimNotFound  = errors.New("trim not found")
)

// Loader is the part of catalog.Repository the selector needs.
type Loader interface {
	ListMakes() []string
	LoadMake(ctx context.Context, name string) (*catalog.MakeCatalog, error)
}

// View is what a vehicle picker shows. Lists are never nil and stay empty while a
// make is loading.
type View struct {
	Identity models.VehicleIdentity `json:"identity"`
	Loading  bool                   `json:"loading"`
	Makes    []string               `json:"makes"`
	Models   []string               `json:"models"`
	Years    []int                  `json:"years"`
	Trims    []catalog.TrimSummary  `json:"trims"`
}

// Selector walks make, model, year and trim and feeds the resolved vehicle to a
// Simulator. The identity itself lives in the simulator so it is persisted with it.
type Selector struct {
	loader Loader
	sim    *store.Simulator

	mu         sync.Mutex
	generation uint64
	loading    bool
	makeName   string
	current    *catalog.MakeCatalog
}

func New(loader Loader, sim *store.Simulator) *Selector {
	return &Selector{loader: loader, sim: sim}
}

// SelectMake leaves custom mode, records the make and starts loading its catalog.
// The returned channel is closed once the load has finished, whether or not its
// result was applied: a load superseded by a later SelectMake is discarded.
func (s *Selector) SelectMake(ctx context.Context, name string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sim.SetCustomMode(false)
	s.sim.SelectVehicle(models.VehicleIdentity{Make: name}, nil)
	return s.load(ctx, name)
}

// Resume reloads the make of a persisted selection without touching the rest of the
// identity.
func (s *Selector) Resume(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, s.sim.State().SelectedVehicle.Make)
}

// load must be called with s.mu held.
func (s *Selector) load(ctx context.Context, name string) <-chan struct{} {
	s.generation++
	generation := s.generation
	s.makeName = name
	s.current = nil

	done := make(chan struct{})
	if name == "" {
		s.loading = false
		close(done)
		return done
	}
	s.loading = true

	go func() {
		defer close(done)
		c, err := s.loader.LoadMake(ctx, name)

		s.mu.Lock()
		defer s.mu.Unlock()
		if generation != s.generation {
			glog.V(1).Infof("Discarding stale load of make %s", name)
			return
		}
		s.loading = false
		if err != nil {
			glog.Warningf("Failed to load make %s: %s", name, err)
			return
		}
		s.current = c
	}()
	return done
}

// loaded returns the current catalog when it belongs to the selected make.
func (s *Selector) loaded(id models.VehicleIdentity) (*catalog.MakeCatalog, bool) {
	if s.loading || s.current == nil || id.Make == "" || id.Make != s.makeName {
		return nil, false
	}
	return s.current, true
}

// SelectModel records the model and clears the year and trim.
func (s *Selector) SelectModel(model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.sim.State().SelectedVehicle
	if _, ok := s.loaded(id); !ok {
		return errors.Wrapf(ErrMakeNotLoaded, "%q", id.Make)
	}
	s.sim.SelectVehicle(models.VehicleIdentity{Make: id.Make, Model: model}, nil)
	return nil
}

// SelectYear records the year and clears the trim.
func (s *Selector) SelectYear(year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.sim.State().SelectedVehicle
	if _, ok := s.loaded(id); !ok {
		return errors.Wrapf(ErrMakeNotLoaded, "%q", id.Make)
	}
	if id.Model == "" {
		return ErrNoModel
	}
	s.sim.SelectVehicle(models.VehicleIdentity{Make: id.Make, Model: id.Model, Year: year}, nil)
	return nil
}

// SelectTrim completes the selection and loads the trim's parameters into the
// simulator.
func (s *Selector) SelectTrim(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.sim.State().SelectedVehicle
	c, ok := s.loaded(id)
	if !ok {
		return errors.Wrapf(ErrMakeNotLoaded, "%q", id.Make)
	}
	if id.Model == "" {
		return ErrNoModel
	}
	if id.Year == 0 {
		return ErrNoYear
	}
	record, ok := c.Trim(id.Model, id.Year, name)
	if !ok {
		return errors.Wrapf(ErrTrimNotFound, "%s %s %d %q", id.Make, id.Model, id.Year, name)
	}

	id.Trim = name
	spec := catalog.ExtractParameters(record)
	s.sim.SelectVehicle(id, &spec)
	glog.Infof("Selected %s %s %d %s (%d gears, %.2f axle, %.1f\" tire)",
		id.Make, id.Model, id.Year, id.Trim, spec.GearCount, spec.AxleRatio, spec.TireDiameter)
	return nil
}

// View returns the current identity and the choices available at each level.
func (s *Selector) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.sim.State().SelectedVehicle
	v := View{
		Identity: id,
		Loading:  s.loading && id.Make != "",
		Makes:    s.loader.ListMakes(),
		Models:   []string{},
		Years:    []int{},
		Trims:    []catalog.TrimSummary{},
	}
	c, ok := s.loaded(id)
	if !ok {
		return v
	}
	v.Models = c.Models()
	if id.Model != "" {
		v.Years = c.Years(id.Model)
	}
	if id.Model != "" && id.Year != 0 {
		v.Trims = c.Trims(id.Model, id.Year)
	}
	return v
}
