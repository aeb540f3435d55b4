package agronomy

import "strings"

// Family groups parameters measured together.
type Family string

const (
	FamilySoil    Family = "soil"
	FamilyWater   Family = "water"
	FamilyWeather Family = "weather"
)

// IsValid reports whether the family is one of the known groups.
func (f Family) IsValid() bool {
	switch f {
	case FamilySoil, FamilyWater, FamilyWeather:
		return true
	default:
		return false
	}
}

// IsLab reports whether samples of this family come from lab tests.
func (f Family) IsLab() bool {
	return f == FamilySoil || f == FamilyWater
}

// Parameter describes one measurable quantity and its optimal band.
type Parameter struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Unit   string `json:"unit"`
	Family Family `json:"family"`
	Green  Band   `json:"green"`
}

// ReferenceTable is an immutable, ordered set of parameter definitions.
type ReferenceTable struct {
	ordered []Parameter
	byKey   map[string]int
	aliases map[string]string
}

// NewReferenceTable indexes params by family+key. Later duplicates are ignored.
func NewReferenceTable(params []Parameter, aliases map[string]string) *ReferenceTable {
	t := &ReferenceTable{
		ordered: make([]Parameter, 0, len(params)),
		byKey:   make(map[string]int, len(params)),
		aliases: make(map[string]string, len(aliases)),
	}
	for _, p := range params {
		k := tableKey(p.Family, p.Key)
		if _, dup := t.byKey[k]; dup {
			continue
		}
		t.byKey[k] = len(t.ordered)
		t.ordered = append(t.ordered, p)
	}
	for alias, canonical := range aliases {
		t.aliases[alias] = canonical
	}
	return t
}

// Lookup finds a parameter by family and key.
func (t *ReferenceTable) Lookup(family Family, key string) (Parameter, bool) {
	idx, ok := t.byKey[tableKey(family, key)]
	if !ok {
		return Parameter{}, false
	}
	return t.ordered[idx], true
}

// Resolve maps an analytics metric name or alias to its parameter.
func (t *ReferenceTable) Resolve(family Family, name string) (Parameter, bool) {
	if p, ok := t.Lookup(family, name); ok {
		return p, true
	}
	if canonical, ok := t.aliases[name]; ok {
		if p, ok := t.Lookup(family, canonical); ok {
			return p, true
		}
	}
	return t.Lookup(family, strings.ToLower(strings.TrimSpace(name)))
}

// Parameters returns the family's parameters in declaration order.
func (t *ReferenceTable) Parameters(family Family) []Parameter {
	out := make([]Parameter, 0, len(t.ordered))
	for _, p := range t.ordered {
		if p.Family == family {
			out = append(out, p)
		}
	}
	return out
}

func tableKey(family Family, key string) string {
	return string(family) + "/" + key
}

// DefaultReferenceTable returns the built in soil, water and spray-safety bands.
func DefaultReferenceTable() *ReferenceTable {
	return NewReferenceTable(defaultParameters(), map[string]string{
		"N":       "nitrogen",
		"P":       "phosphorus",
		"K":       "potassium",
		"pH":      "soil_ph",
		"ph":      "soil_ph",
		"OC":      "oc",
		"S":       "s",
		"Zn":      "zn",
		"Fe":      "fe",
		"Mn":      "mn",
		"Cu":      "cu",
		"B":       "b",
		"EC":      "ec",
		"no3":     "no3_n",
		"nitrate": "no3_n",
	})
}

func defaultParameters() []Parameter {
	soil := func(key, label, unit string, lo, hi float64) Parameter {
		return Parameter{Key: key, Label: label, Unit: unit, Family: FamilySoil, Green: Band{Min: lo, Max: hi}}
	}
	water := func(key, label, unit string, lo, hi float64) Parameter {
		return Parameter{Key: key, Label: label, Unit: unit, Family: FamilyWater, Green: Band{Min: lo, Max: hi}}
	}
	weather := func(key, label, unit string, lo, hi float64) Parameter {
		return Parameter{Key: key, Label: label, Unit: unit, Family: FamilyWeather, Green: Band{Min: lo, Max: hi}}
	}
	return []Parameter{
		soil("soil_ph", "Soil pH", "", 6, 7.5),
		soil("ec", "EC", "dS/m", 0.2, 1.0),
		soil("nitrogen", "Nitrogen (N)", "kg/ha", 280, 450),
		soil("phosphorus", "Phosphorus (P)", "kg/ha", 20, 40),
		soil("potassium", "Potassium (K)", "kg/ha", 120, 250),
		soil("zn", "Zinc (Zn)", "mg/kg", 0.6, 1.2),
		soil("fe", "Iron (Fe)", "mg/kg", 4.5, 8),
		soil("mn", "Manganese (Mn)", "mg/kg", 2, 5),
		soil("cu", "Copper (Cu)", "mg/kg", 0.2, 0.5),
		soil("b", "Boron (B)", "mg/kg", 0.5, 1.0),
		soil("oc", "Organic Carbon (OC)", "%", 0.75, 1.5),
		soil("s", "Sulphur (S)", "mg/kg", 10, 20),
		soil("lime_requirement", "Lime Requirement", "t/ha", 0, 2),
		soil("gypsum_requirement", "Gypsum Requirement", "t/ha", 0, 2),

		water("ph", "pH", "", 6.5, 8.4),
		water("ec", "EC", "dS/m", 0, 0.75),
		water("tds", "TDS", "mg/L", 0, 500),
		water("hardness", "Hardness", "mg/L", 0, 300),
		water("na", "Sodium (Na⁺)", "mg/L", 0, 200),
		water("ca", "Calcium (Ca²⁺)", "mg/L", 0, 200),
		water("mg", "Magnesium (Mg²⁺)", "mg/L", 0, 150),
		water("sar", "SAR", "", 0, 10),
		water("rsc", "RSC", "meq/L", 0, 1.25),
		water("hco3", "Bicarbonate (HCO₃⁻)", "mg/L", 0, 200),
		water("co3", "Carbonate (CO₃²⁻)", "mg/L", 0, 30),
		water("cl", "Chloride (Cl⁻)", "mg/L", 0, 250),
		water("so4", "Sulphate (SO₄²⁻)", "mg/L", 0, 200),
		water("boron", "Boron", "mg/L", 0, 0.5),
		water("no3_n", "Nitrate-N", "mg/L", 0, 10),
		water("fe", "Iron (Fe)", "mg/L", 0, 0.3),
		water("f", "Fluoride (F⁻)", "mg/L", 0, 1.5),

		// display bands only; spray decisions come from forecast.Evaluate
		weather("precipitation_probability_max", "Rain probability", "%", 0, 40),
		weather("windspeed_10m_max", "Wind speed", "km/h", 0, 15),
		weather("temperature_2m_max", "Max temperature", "°C", 0, 32),
	}
}
