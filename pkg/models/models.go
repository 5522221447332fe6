package models

// VehicleIdentity names a cataloged vehicle. Zero values mean "not selected".
type VehicleIdentity struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Trim  string `json:"trim"`
}

// IsComplete reports whether all four fields are set.
func (v VehicleIdentity) IsComplete() bool {
	return v.Make != "" && v.Model != "" && v.Year != 0 && v.Trim != ""
}

// IsEmpty reports whether nothing has been selected.
func (v VehicleIdentity) IsEmpty() bool {
	return v == VehicleIdentity{}
}

// VehicleSpec is the calculator-ready part of a vehicle: everything the RPM formula
// needs except speed and the selected gear.
type VehicleSpec struct {
	GearCount        int       `json:"gearCount"`
	GearRatios       []float64 `json:"gearRatios"`
	AxleRatio        float64   `json:"axleRatio"`
	TireDiameter     float64   `json:"tireDiameter"`
	TransmissionType string    `json:"transmissionType,omitempty"`
}

// Preset is a named, built-in VehicleSpec.
type Preset struct {
	Key  string      `json:"key"`
	Name string      `json:"name"`
	Spec VehicleSpec `json:"spec"`
	Tire string      `json:"tire,omitempty"` // tire size the diameter was derived from
}

// AxleRatioReference is a commonly available final-drive ratio.
type AxleRatioReference struct {
	Ratio       float64 `json:"ratio"`
	Description string  `json:"description"`
}

// TireSizeReference maps tire size notation to overall diameter.
type TireSizeReference struct {
	Size     string  `json:"size"`
	Diameter float64 `json:"diameter"`
}

// MaxGears is the largest supported transmission.
const MaxGears = 10
