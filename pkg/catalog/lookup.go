package catalog

import "sort"

// Models returns the sorted, deduplicated model names.
func (c *MakeCatalog) Models() []string {
	seen := make(map[string]bool)
	models := []string{}
	for _, v := range c.Vehicles {
		if seen[v.Model] {
			continue
		}
		seen[v.Model] = true
		models = append(models, v.Model)
	}
	sort.Strings(models)
	return models
}

// Years returns the years available for model, newest first.
func (c *MakeCatalog) Years(model string) []int {
	seen := make(map[int]bool)
	years := []int{}
	for _, v := range c.Vehicles {
		if v.Model != model || seen[v.Year] {
			continue
		}
		seen[v.Year] = true
		years = append(years, v.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Trims lists the trims of a model-year, or nothing if there is no such vehicle.
func (c *MakeCatalog) Trims(model string, year int) []TrimSummary {
	v, ok := c.vehicle(model, year)
	if !ok {
		return []TrimSummary{}
	}
	trims := make([]TrimSummary, 0, len(v.Trims))
	for _, t := range v.Trims {
		desc := t.Transmission.Description
		if desc == "" {
			desc = "Unknown"
		}
		trims = append(trims, TrimSummary{ID: t.ID, Name: t.Name, TransmissionDescription: desc})
	}
	return trims
}

// Trim finds a trim by exact name.
func (c *MakeCatalog) Trim(model string, year int, name string) (TrimRecord, bool) {
	v, ok := c.vehicle(model, year)
	if !ok {
		return TrimRecord{}, false
	}
	for _, t := range v.Trims {
		if t.Name == name {
			return t, true
		}
	}
	return TrimRecord{}, false
}

func (c *MakeCatalog) vehicle(model string, year int) (Vehicle, bool) {
	for _, v := range c.Vehicles {
		if v.Model == model && v.Year == year {
			return v, true
		}
	}
	return Vehicle{}, false
}
