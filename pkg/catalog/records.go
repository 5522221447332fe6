package catalog

// MakeCatalog is the filtered dataset of one make. Every trim it holds passed validation.
type MakeCatalog struct {
	Make         string    `json:"make"`
	Vehicles     []Vehicle `json:"vehicles"`
	VehicleCount int       `json:"vehicle_count"`
}

// Vehicle is one model-year of a make.
type Vehicle struct {
	Model string       `json:"model"`
	Year  int          `json:"year"`
	Trims []TrimRecord `json:"trims"`
}

// TrimRecord is a raw catalog trim.
type TrimRecord struct {
	ID           string       `json:"trim_id"`
	Name         string       `json:"trim_name"`
	Transmission Transmission `json:"transmission"`
	Tires        Tires        `json:"tires"`
}

// Transmission carries gear ratios keyed by label ("1st".."10th", "final_drive").
// Values may be JSON numbers or numeric strings.
type Transmission struct {
	Description string                 `json:"description"`
	GearRatios  map[string]interface{} `json:"gear_ratios"`
}

type Tires struct {
	Front *Tire `json:"front"`
	Rear  *Tire `json:"rear"`
}

type Tire struct {
	Size           string  `json:"size"`
	DiameterInches float64 `json:"diameter_inches"`
}

// TrimSummary is what a trim picker shows.
type TrimSummary struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	TransmissionDescription string `json:"transmissionType"`
}

// Manifest lists the bundled makes and the dataset file of each.
type Manifest struct {
	Makes []ManifestEntry `json:"makes"`
}

type ManifestEntry struct {
	Name string `json:"name"`
	File string `json:"file"`
}
