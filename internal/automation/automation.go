package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Action names accepted in a scenario step.
const (
	ActionRun         = "run"
	ActionSpawn       = "spawn"
	ActionSpawnRandom = "spawn_random"
	ActionSpeedUp     = "speed_up"
	ActionSlowDown    = "slow_down"
	ActionSetDt       = "set_dt"
	ActionReset       = "reset"
	ActionSwitch      = "switch"
)

// Scenario is a scripted sequence of actions against one simulation.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Dt          float64        `yaml:"dt"`
	Seed        int64          `yaml:"seed"`
	SampleEvery int            `yaml:"sample_every"`
	Steps       []ScenarioStep `yaml:"steps"`
}

type ScenarioStep struct {
	Action   string       `yaml:"action"`
	Duration float64      `yaml:"duration"`
	Dt       float64      `yaml:"dt"`
	Preset   string       `yaml:"preset"`
	Body     *config.Body `yaml:"body"`
	X        float64      `yaml:"x"`
	Y        float64      `yaml:"y"`
	Count    int          `yaml:"count"`
	SaveAs   string       `yaml:"save_as"`
}

// StepResult is the outcome of one run action.
type StepResult struct {
	Step   int
	Name   string
	Setup  string
	Params sim.Params
	Labels []string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if scenario.Preset == "" {
		return nil, fmt.Errorf("scenario %q: no preset", scenario.Name)
	}
	for i, step := range scenario.Steps {
		if err := step.check(); err != nil {
			return nil, fmt.Errorf("scenario %q step %d: %w", scenario.Name, i+1, err)
		}
	}
	return &scenario, nil
}

func (s ScenarioStep) check() error {
	switch s.Action {
	case ActionRun:
		if !(s.Duration > 0) {
			return fmt.Errorf("run duration %g: %w", s.Duration, dynamo.ErrParameterBounds)
		}
	case ActionSpawn:
		if s.Body == nil {
			return fmt.Errorf("spawn without body: %w", dynamo.ErrParameterBounds)
		}
	case ActionSetDt:
		if !(s.Dt > 0) {
			return fmt.Errorf("set_dt %g: %w", s.Dt, dynamo.ErrNonPositiveStep)
		}
	case ActionSwitch:
		if s.Preset == "" {
			return fmt.Errorf("switch without preset: %w", dynamo.ErrUnknownPreset)
		}
	case ActionSpawnRandom, ActionSpeedUp, ActionSlowDown, ActionReset:
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
	return nil
}

func buildSetup(registry *experiment.Registry, name string, dt float64) (sim.Setup, error) {
	p, err := registry.GetPreset(name)
	if err != nil {
		return sim.Setup{}, err
	}
	params := p.Params
	if dt > 0 {
		params.Dt = dt
	}
	return config.BuildSetup(p.Name, params, p.Bodies)
}

// RunScenario executes every step in order against a single simulation.
// Results of the run steps completed before a failure are returned with
// the error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *zap.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("scenario", scenario.Name))

	setup, err := buildSetup(registry, scenario.Preset, scenario.Dt)
	if err != nil {
		return nil, err
	}
	s, err := sim.New(setup,
		sim.WithLogger(logger),
		sim.WithMetrics(registry.DefaultMetrics(setup)...),
	)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(scenario.Seed))

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		n := i + 1
		logger.Info("scenario step",
			zap.Int("step", n),
			zap.Int("of", len(scenario.Steps)),
			zap.String("action", step.Action),
		)

		switch step.Action {
		case ActionRun:
			res, err := s.Run(ctx, s.Elapsed()+step.Duration, sim.RunOptions{
				SampleEvery:   scenario.SampleEvery,
				ValidateState: true,
			})
			if err != nil {
				return results, fmt.Errorf("step %d run: %w", n, err)
			}
			name := step.SaveAs
			if name == "" {
				name = fmt.Sprintf("step%d", n)
			}
			results = append(results, StepResult{
				Step:   n,
				Name:   name,
				Setup:  s.Name(),
				Params: s.Params(),
				Labels: labels(s),
				Result: res,
			})

		case ActionSpawn:
			b := step.Body
			label := b.Label
			if label == "" {
				label = physics.HiddenLabel
			}
			_, err = s.Spawn(dynamo.Vec2{X: b.X, Y: b.Y}, dynamo.Vec2{X: b.VX, Y: b.VY}, b.Mass, b.Radius, label)

		case ActionSpawnRandom:
			count := step.Count
			if count <= 0 {
				count = 1
			}
			// lay them out in a row so no two start in contact
			spacing := 2 * math.Sqrt(sim.MaxRandomMass)
			for j := 0; j < count && err == nil; j++ {
				_, err = s.SpawnRandom(rng, dynamo.Vec2{X: step.X + float64(j)*spacing, Y: step.Y})
			}

		case ActionSpeedUp:
			err = s.SpeedUp()
		case ActionSlowDown:
			err = s.SlowDown()
		case ActionSetDt:
			err = s.ChangeSpeed(step.Dt)
		case ActionReset:
			s.Reset()

		case ActionSwitch:
			var next sim.Setup
			next, err = buildSetup(registry, step.Preset, step.Dt)
			if err == nil {
				err = s.Switch(next, registry.DefaultMetrics(next)...)
			}
		}

		if err != nil {
			return results, fmt.Errorf("step %d %s: %w", n, step.Action, err)
		}
	}

	return results, nil
}

func labels(s *sim.Simulation) []string {
	ps := s.Particles()
	out := make([]string, len(ps))
	for i := range ps {
		out[i] = ps[i].Label
	}
	return out
}
