package source

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// Text is a scalar kept exactly as written, so "1.234,56" and 1234.56
// both reach the money parser untouched.
type Text string

// UnmarshalYAML accepts any scalar.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return &yaml.TypeError{Errors: []string{"expected a scalar at line " + strconv.Itoa(node.Line)}}
	}
	*t = Text(node.Value)
	return nil
}

// RawDocument is a trip file holding several trips.
type RawDocument struct {
	Trips []RawTrip `yaml:"trips"`
}

// RawTrip is one trip as written in a trip file.
type RawTrip struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Passengers    Text   `yaml:"passengers"`
	Flight        Text   `yaml:"flight"`
	Accommodation Text   `yaml:"accommodation"`
	Additional    Text   `yaml:"additional"`
	// Lodging is "global" or "per_stop". Left empty, per-stop pricing is
	// used when any stop gives nights or a nightly price.
	Lodging string `yaml:"lodging"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	Target  string `yaml:"target"`
	// Country applies to every stop that does not name its own.
	Country      string           `yaml:"country"`
	Destinations []RawDestination `yaml:"destinations"`
	// Monthly is the per-person savings rate the traveller commits to.
	Monthly Text `yaml:"monthly"`
}

// RawDestination is one stop as written in a trip file.
type RawDestination struct {
	Country       string `yaml:"country"`
	City          string `yaml:"city"`
	Lodging       *bool  `yaml:"lodging"`
	Nights        Text   `yaml:"nights"`
	PricePerNight Text   `yaml:"price_per_night"`
}

// DiscoveredFile is a trip file found on disk.
type DiscoveredFile struct {
	Path string
	// Name is the file name without extension.
	Name string
}
