package store

import (
	"encoding/json"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/models"
)

var (
	ErrGearOutOfRange      = errors.New("gear out of range")
	ErrGearCountOutOfRange = errors.New("gear count out of range")
	ErrUnknownPreset       = errors.New("unknown preset")
)

// State is a snapshot plus the values derived from it. Derived values are computed
// on every read and never stored.
type State struct {
	Snapshot
	CurrentGearRatio float64            `json:"currentGearRatio"`
	RPM              float64            `json:"rpm"`
	Zone             formula.Zone       `json:"zone"`
	FormattedRPM     string             `json:"formattedRPM"`
	NeedleAngle      float64            `json:"needleAngle"`
	Thresholds       formula.Thresholds `json:"thresholds"`
}

// ChangeListener is called with the new state after every transition, in the order the
// transitions were applied.
type ChangeListener func(State)

// Simulator owns the simulation state. Every transition is persisted to its Storage;
// persistence failures are logged and the in-memory state stays authoritative.
type Simulator struct {
	mu         sync.Mutex
	snap       Snapshot
	storage    Storage
	thresholds formula.Thresholds
	listeners  []ChangeListener

	// pending holds derived states waiting for delivery, guarded by mu.
	pending    []State
	delivering sync.Mutex
}

// New restores the simulator from storage, falling back to defaults.
func New(storage Storage, thresholds formula.Thresholds) *Simulator {
	return &Simulator{
		snap:       restore(storage),
		storage:    storage,
		thresholds: thresholds,
	}
}

func restore(storage Storage) Snapshot {
	data, ok, err := storage.Get(StorageKey)
	if err != nil {
		glog.Warningf("Failed to load state, using defaults: %s", err)
		return DefaultSnapshot()
	}
	if !ok {
		glog.Info("No stored state, using defaults")
		return DefaultSnapshot()
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		glog.Warningf("Failed to load state, using defaults: %s", err)
	}
	return snap
}

// AddChangeListener registers fn for every later transition.
func (s *Simulator) AddChangeListener(fn ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// State returns the current snapshot and derived values.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return derive(s.snap.clone(), s.thresholds)
}

func derive(snap Snapshot, thresholds formula.Thresholds) State {
	ratio := 1.0
	if i := snap.SelectedGear - 1; i >= 0 && i < len(snap.GearRatios) {
		ratio = snap.GearRatios[i]
	}
	rpm := formula.CalculateRPM(snap.Speed, ratio, snap.AxleRatio, snap.TireDiameter)
	return State{
		Snapshot:         snap,
		CurrentGearRatio: ratio,
		RPM:              rpm,
		Zone:             formula.ClassifyZone(rpm, thresholds),
		FormattedRPM:     formula.FormatRPM(rpm),
		NeedleAngle:      formula.NeedleAngle(rpm),
		Thresholds:       thresholds,
	}
}

// update applies fn, persists the result and notifies listeners. A transition that
// returns an error has not changed anything and is neither saved nor announced.
func (s *Simulator) update(fn func(snap *Snapshot) error) error {
	s.mu.Lock()
	if err := fn(&s.snap); err != nil {
		s.mu.Unlock()
		return err
	}
	s.save()
	s.pending = append(s.pending, derive(s.snap.clone(), s.thresholds))
	s.mu.Unlock()

	s.deliver()
	return nil
}

// deliver hands queued states to the listeners in the order the transitions were
// applied. Only one goroutine delivers at a time; a transition made meanwhile, including
// one made from inside a listener, is delivered by the goroutine already delivering.
func (s *Simulator) deliver() {
	for s.delivering.TryLock() {
		for {
			s.mu.Lock()
			if len(s.pending) == 0 {
				s.mu.Unlock()
				break
			}
			state := s.pending[0]
			s.pending = s.pending[1:]
			listeners := append([]ChangeListener(nil), s.listeners...)
			s.mu.Unlock()

			for _, l := range listeners {
				l(state)
			}
		}
		s.delivering.Unlock()

		// A state queued between the empty check and Unlock has no one else to deliver it.
		s.mu.Lock()
		empty := len(s.pending) == 0
		s.mu.Unlock()
		if empty {
			return
		}
	}
}

// save must be called with s.mu held.
func (s *Simulator) save() {
	data, err := json.Marshal(s.snap)
	if err != nil {
		glog.Warningf("Failed to encode state: %s", err)
		return
	}
	if err := s.storage.Set(StorageKey, data); err != nil {
		glog.Warningf("Failed to save state: %s", err)
	}
}

func switchToCustomMode(snap *Snapshot) {
	snap.IsCustomMode = true
	snap.SelectedVehicle = models.VehicleIdentity{}
}

// SetGearCount resizes the ratio list to n gears and leaves any cataloged vehicle.
func (s *Simulator) SetGearCount(n int) error {
	if n < 1 || n > models.MaxGears {
		return errors.Wrapf(ErrGearCountOutOfRange, "%d", n)
	}
	return s.update(func(snap *Snapshot) error {
		snap.GearRatios = resizeRatios(snap.GearRatios, n)
		snap.GearCount = n
		snap.SelectedGear = clampGear(snap.SelectedGear, n)
		switchToCustomMode(snap)
		return nil
	})
}

// SetGearRatio overwrites the ratio at the 0-based index.
func (s *Simulator) SetGearRatio(index int, ratio float64) error {
	return s.update(func(snap *Snapshot) error {
		if index < 0 || index >= len(snap.GearRatios) {
			return errors.Wrapf(ErrGearOutOfRange, "index %d", index)
		}
		snap.GearRatios[index] = ratio
		switchToCustomMode(snap)
		return nil
	})
}

// SetSelectedGear engages a 1-indexed gear.
func (s *Simulator) SetSelectedGear(gear int) error {
	return s.update(func(snap *Snapshot) error {
		if gear < 1 || gear > snap.GearCount {
			return errors.Wrapf(ErrGearOutOfRange, "gear %d of %d", gear, snap.GearCount)
		}
		snap.SelectedGear = gear
		return nil
	})
}

// SetSpeed changes the road speed. Speed is not a vehicle property, so the
// cataloged selection is kept.
func (s *Simulator) SetSpeed(mph float64) {
	s.update(func(snap *Snapshot) error {
		snap.Speed = mph
		return nil
	})
}

func (s *Simulator) SetAxleRatio(ratio float64) {
	s.update(func(snap *Snapshot) error {
		snap.AxleRatio = ratio
		switchToCustomMode(snap)
		return nil
	})
}

func (s *Simulator) SetTireDiameter(inches float64) {
	s.update(func(snap *Snapshot) error {
		snap.TireDiameter = inches
		switchToCustomMode(snap)
		return nil
	})
}

// SelectVehicle records the selected identity. When spec is non-nil (a complete trim
// was resolved) its parameters replace the current ones and 4th gear, or the top
// gear of shorter boxes, is engaged.
func (s *Simulator) SelectVehicle(identity models.VehicleIdentity, spec *models.VehicleSpec) {
	s.update(func(snap *Snapshot) error {
		snap.SelectedVehicle = identity
		if spec != nil && spec.GearCount >= 1 {
			applySpec(snap, *spec)
		}
		return nil
	})
}

func applySpec(snap *Snapshot, spec models.VehicleSpec) {
	snap.GearRatios = resizeRatios(spec.GearRatios, spec.GearCount)
	snap.GearCount = spec.GearCount
	snap.AxleRatio = spec.AxleRatio
	snap.TireDiameter = spec.TireDiameter
	snap.SelectedGear = minInt(defaultSelectedGear, spec.GearCount)
}

// SetCustomMode toggles custom mode; enabling it clears the selected vehicle.
func (s *Simulator) SetCustomMode(enabled bool) {
	s.update(func(snap *Snapshot) error {
		snap.IsCustomMode = enabled
		if enabled {
			snap.SelectedVehicle = models.VehicleIdentity{}
		}
		return nil
	})
}

// ApplyPreset loads a built-in preset as custom values.
func (s *Simulator) ApplyPreset(key string) error {
	p, ok := models.FindPreset(key)
	if !ok {
		return errors.Wrapf(ErrUnknownPreset, "%q", key)
	}
	return s.update(func(snap *Snapshot) error {
		applySpec(snap, p.Spec)
		switchToCustomMode(snap)
		return nil
	})
}

// Reset clears the storage slot and returns to defaults.
func (s *Simulator) Reset() {
	s.mu.Lock()
	if err := s.storage.Clear(StorageKey); err != nil {
		glog.Warningf("Failed to clear state: %s", err)
	}
	s.snap = DefaultSnapshot()
	s.pending = append(s.pending, derive(s.snap.clone(), s.thresholds))
	s.mu.Unlock()

	s.deliver()
}
