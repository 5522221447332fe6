package models

// Built-in presets. Ratios follow manufacturer specifications.
var Presets = []Preset{
	{
		Key:  "miata",
		Name: "Mazda MX-5 Miata (ND)",
		Tire: "205/45R17",
		Spec: VehicleSpec{
			GearCount:    6,
			GearRatios:   []float64{3.454, 1.944, 1.310, 1.000, 0.787, 0.645},
			AxleRatio:    2.866,
			TireDiameter: 24.3,
		},
	},
	{
		Key:  "civicSi",
		Name: "Honda Civic Si",
		Tire: "235/40R18",
		Spec: VehicleSpec{
			GearCount:    6,
			GearRatios:   []float64{3.643, 2.080, 1.361, 1.024, 0.830, 0.686},
			AxleRatio:    4.35,
			TireDiameter: 25.7,
		},
	},
	{
		Key:  "mustangGT",
		Name: "Ford Mustang GT",
		Tire: "255/40R19",
		Spec: VehicleSpec{
			GearCount:    6,
			GearRatios:   []float64{3.36, 1.93, 1.29, 1.00, 0.84, 0.56},
			AxleRatio:    3.73,
			TireDiameter: 26.7,
		},
	},
	{
		Key:  "wrx",
		Name: "Subaru WRX",
		Tire: "245/40R18",
		Spec: VehicleSpec{
			GearCount:    6,
			GearRatios:   []float64{3.454, 1.947, 1.366, 0.972, 0.738, 0.666},
			AxleRatio:    3.90,
			TireDiameter: 25.7,
		},
	},
	{
		Key:  "corvette",
		Name: "Chevrolet Corvette (C7)",
		Tire: "285/30R20",
		Spec: VehicleSpec{
			GearCount:    7,
			GearRatios:   []float64{2.97, 2.07, 1.43, 1.00, 0.84, 0.57, 0.50},
			AxleRatio:    3.42,
			TireDiameter: 27.4,
		},
	},
	{
		Key:  "porsche911",
		Name: "Porsche 911 Carrera",
		Tire: "295/35R19",
		Spec: VehicleSpec{
			GearCount:    6,
			GearRatios:   []float64{3.91, 2.29, 1.55, 1.13, 0.87, 0.68},
			AxleRatio:    3.44,
			TireDiameter: 26.2,
		},
	},
	{
		Key:  "gr86",
		Name: "Toyota GR86 / Subaru BRZ",
		Tire: "215/40R18",
		Spec: VehicleSpec{
			GearCount:    6,
			GearRatios:   []float64{3.626, 2.188, 1.541, 1.213, 1.000, 0.767},
			AxleRatio:    4.10,
			TireDiameter: 25.1,
		},
	},
	{
		Key:  "semiTruck",
		Name: "Semi-Truck (10-speed)",
		Tire: "295/75R22.5",
		Spec: VehicleSpec{
			GearCount:    10,
			GearRatios:   []float64{12.29, 8.56, 6.06, 4.38, 3.20, 2.29, 1.52, 1.00, 0.74, 0.64},
			AxleRatio:    3.70,
			TireDiameter: 42.0,
		},
	},
	{
		Key:  "custom",
		Name: "Custom",
		Spec: VehicleSpec{
			GearCount:    6,
			GearRatios:   []float64{3.36, 1.93, 1.29, 1.00, 0.84, 0.56},
			AxleRatio:    3.73,
			TireDiameter: 26.7,
		},
	},
}

// DefaultPresetKey is the preset the simulator starts from.
const DefaultPresetKey = "mustangGT"

// FindPreset returns the preset with the given key.
func FindPreset(key string) (Preset, bool) {
	for _, p := range Presets {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

// CommonAxleRatios lists typical final-drive choices.
var CommonAxleRatios = []AxleRatioReference{
	{Ratio: 3.08, Description: "Highway economy"},
	{Ratio: 3.31, Description: "Balanced"},
	{Ratio: 3.55, Description: "Performance"},
	{Ratio: 3.73, Description: "Performance/Towing"},
	{Ratio: 4.10, Description: "Acceleration"},
}

// CommonTireSizes lists typical tire sizes with their overall diameters.
var CommonTireSizes = []TireSizeReference{
	{Size: "P205/55R16", Diameter: 24.9},
	{Size: "P225/60R16", Diameter: 26.7},
	{Size: "P235/40R18", Diameter: 25.4},
	{Size: "P245/40R18", Diameter: 25.7},
	{Size: "P255/40R19", Diameter: 27.0},
	{Size: "P275/40R20", Diameter: 28.7},
}
