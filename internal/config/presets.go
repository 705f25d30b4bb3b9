package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

// G is the gravitational constant in SI units.
const G = 6.674e-11

// Body is the literal initial condition of one particle.
type Body struct {
	Label  string  `yaml:"label" json:"label"`
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	VX     float64 `yaml:"vx" json:"vx"`
	VY     float64 `yaml:"vy" json:"vy"`
	Mass   float64 `yaml:"mass" json:"mass"`
	Radius float64 `yaml:"radius" json:"radius"`
}

type Preset struct {
	Name        string
	Title       string
	Description string
	Params      sim.Params
	Duration    float64 // suggested run length, simulated seconds
	Bodies      []Body
}

// Setup builds a fresh ensemble for the preset.
func (p *Preset) Setup() (sim.Setup, error) {
	return BuildSetup(p.Name, p.Params, p.Bodies)
}

// BuildSetup turns literal bodies into a simulation setup, deriving each
// particle's position history from params.Dt.
func BuildSetup(name string, params sim.Params, bodies []Body) (sim.Setup, error) {
	if err := params.Validate(); err != nil {
		return sim.Setup{}, fmt.Errorf("preset %q: %w", name, err)
	}
	b := physics.NewBuilder(params.Dt)
	for _, body := range bodies {
		b.Add(
			dynamo.Vec2{X: body.X, Y: body.Y},
			dynamo.Vec2{X: body.VX, Y: body.VY},
			body.Mass, body.Radius, body.Label,
		)
	}
	ps, err := b.Build()
	if err != nil {
		return sim.Setup{}, fmt.Errorf("preset %q: %w", name, err)
	}
	return sim.Setup{Name: name, Particles: ps, Params: params}, nil
}

var Presets = map[string]*Preset{
	"custom": {
		Name:        "custom",
		Title:       "Custom",
		Description: "empty sandbox for spawned particles",
		Params:      sim.Params{G: 0.01, Dt: 1, Restitution: 0.75, Collisions: true},
		Duration:    100,
	},
	"solar_system": {
		Name:        "solar_system",
		Title:       "Solar System",
		Description: "Sun and nine bodies on their mean orbits",
		Params:      sim.Params{G: G, Dt: 1e5, Restitution: 1},
		Duration:    3.156e7,
		Bodies: []Body{
			{Label: "Sun", Mass: 1.989e30},
			{Label: "Mercury", X: 4.6e10, VY: 53703.3518507, Mass: 3.285e23},
			{Label: "Venus", X: 1.0875e11, VY: 34927.3531777, Mass: 4.867e24},
			{Label: "Earth", X: 1.4765e11, VY: 29975.3030751, Mass: 5.972e24},
			{Label: "Mars", X: 2.279e11, VY: 24117.9259962, Mass: 6.417e23},
			{Label: "Jupiter", X: 7.785e11, VY: 13069.708962, Mass: 1.898e27},
			{Label: "Saturn", X: 1.4335e12, VY: 9690.4862238, Mass: 5.683e26},
			{Label: "Uranus", X: 2.8725e12, VY: 6835.08288589, Mass: 8.681e25},
			{Label: "Neptune", X: 4.4951e12, VY: 5477.9200121, Mass: 1.024e26},
			{Label: "Pluto", X: 5.9064e12, VY: 4748.04182444, Mass: 1.309e22},
		},
	},
	"earth_moon": {
		Name:        "earth_moon",
		Title:       "Earth-Moon System",
		Description: "Moon on a near-circular orbit around a resting Earth",
		Params:      sim.Params{G: G, Dt: 1e3, Restitution: 1},
		Duration:    2.36e6,
		Bodies: []Body{
			{Label: "Earth", Mass: 5.972e24},
			{Label: "Moon", X: 3.844e8, VY: 1018.26616017, Mass: 7.34767309e22},
		},
	},
	"binary": {
		Name:        "binary",
		Title:       "Binary",
		Description: "two equal masses on a circular mutual orbit",
		Params:      sim.Params{G: 1, Dt: 0.01, Restitution: 0.75, Collisions: true},
		Duration:    25,
		Bodies: []Body{
			{Label: "A", X: -1, VY: -0.5, Mass: 1, Radius: 0.1},
			{Label: "B", X: 1, VY: 0.5, Mass: 1, Radius: 0.1},
		},
	},
	"cradle": {
		Name:        "cradle",
		Title:       "Cradle",
		Description: "one ball striking a resting row of equal masses",
		Params:      sim.Params{G: 0, Dt: 0.05, Restitution: 1, Collisions: true},
		Duration:    10,
		Bodies: []Body{
			{Label: "striker", X: -3, VX: 1, Mass: 1, Radius: 1},
			{Label: physics.HiddenLabel, X: 0, Mass: 1, Radius: 1},
			{Label: physics.HiddenLabel, X: 2, Mass: 1, Radius: 1},
			{Label: physics.HiddenLabel, X: 4, Mass: 1, Radius: 1},
			{Label: "last", X: 6, Mass: 1, Radius: 1},
		},
	},
}

func GetPreset(name string) (*Preset, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownPreset)
	}
	return p, nil
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
