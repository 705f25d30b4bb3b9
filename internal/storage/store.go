package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	metadataFile   = "metadata.json"
	samplesFile    = "samples.csv"
	trajectoryFile = "trajectory.csv"
)

var sampleHeader = []string{"time", "kinetic", "potential", "total", "px", "py", "angular_momentum"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunInfo describes how a run was produced.
type RunInfo struct {
	Preset     string
	Params     sim.Params
	Duration   float64
	Seed       int64
	Integrator string
	Labels     []string
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Params      sim.Params         `json:"params"`
	Duration    float64            `json:"duration"`
	Integrator  string             `json:"integrator"`
	Particles   int                `json:"particles"`
	Labels      []string           `json:"labels,omitempty"`
	StepsTaken  int                `json:"steps_taken"`
	EnergyDrift float64            `json:"energy_drift"`
	Diverged    bool               `json:"diverged"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata, samples and, when
// recorded, the trajectory. Non-finite metrics are dropped and mark the
// run as diverged.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", info.Preset, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Preset:      info.Preset,
		Timestamp:   time.Now(),
		Seed:        info.Seed,
		Params:      info.Params,
		Duration:    info.Duration,
		Integrator:  info.Integrator,
		Particles:   len(info.Labels),
		Labels:      info.Labels,
		StepsTaken:  result.StepsTaken,
		EnergyDrift: result.EnergyDrift,
		Metrics:     make(map[string]float64, len(result.Metrics)),
	}
	if !finite(meta.EnergyDrift) {
		meta.EnergyDrift = 0
		meta.Diverged = true
	}
	for name, v := range result.Metrics {
		if !finite(v) {
			meta.Diverged = true
			continue
		}
		meta.Metrics[name] = v
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), data, 0644); err != nil {
		return "", err
	}

	if err := writeCSV(filepath.Join(runDir, samplesFile), func(w *csv.Writer) error {
		return writeSamples(w, result.Samples)
	}); err != nil {
		return "", err
	}

	if len(result.Trajectory) > 0 {
		if err := writeCSV(filepath.Join(runDir, trajectoryFile), func(w *csv.Writer) error {
			return writeTrajectory(w, result.Trajectory)
		}); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func writeCSV(path string, fill func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeSamples(w *csv.Writer, samples []metrics.Sample) error {
	if err := w.Write(sampleHeader); err != nil {
		return err
	}
	for _, smp := range samples {
		row := []string{
			formatFloat(smp.Time),
			formatFloat(smp.Kinetic),
			formatFloat(smp.Potential),
			formatFloat(smp.Total),
			formatFloat(smp.Momentum.X),
			formatFloat(smp.Momentum.Y),
			formatFloat(smp.AngularMomentum),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeTrajectory(w *csv.Writer, snaps []sim.Snapshot) error {
	n := len(snaps[0].Positions)
	header := []string{"time"}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, snap := range snaps {
		row := []string{formatFloat(snap.Time)}
		for _, p := range snap.Positions {
			row = append(row, formatFloat(p.X), formatFloat(p.Y))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sampleFinite(smp metrics.Sample) bool {
	return finite(smp.Time) && finite(smp.Kinetic) && finite(smp.Potential) &&
		finite(smp.Total) && smp.Momentum.IsValid() && finite(smp.AngularMomentum)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: decoding metadata: %w", runID, err)
	}
	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseRow(record []string) ([]float64, error) {
	vals := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (s *Store) LoadSamples(runID string) ([]metrics.Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}

	samples := make([]metrics.Sample, 0, len(records))
	for i := 1; i < len(records); i++ {
		vals, err := parseRow(records[i])
		if err != nil || len(vals) != len(sampleHeader) {
			return nil, fmt.Errorf("run %s: samples row %d: %w", runID, i, dynamo.ErrInvalidState)
		}
		samples = append(samples, metrics.Sample{
			Time:            vals[0],
			Kinetic:         vals[1],
			Potential:       vals[2],
			Total:           vals[3],
			Momentum:        dynamo.Vec2{X: vals[4], Y: vals[5]},
			AngularMomentum: vals[6],
		})
	}
	return samples, nil
}

// LoadTrajectory returns the recorded snapshots, or none if the run did
// not record a trajectory.
func (s *Store) LoadTrajectory(runID string) ([]sim.Snapshot, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []sim.Snapshot{}, nil
		}
		return nil, err
	}

	snaps := make([]sim.Snapshot, 0, len(records))
	for i := 1; i < len(records); i++ {
		vals, err := parseRow(records[i])
		if err != nil || len(vals)%2 != 1 {
			return nil, fmt.Errorf("run %s: trajectory row %d: %w", runID, i, dynamo.ErrInvalidState)
		}
		snap := sim.Snapshot{Time: vals[0], Positions: make([]dynamo.Vec2, 0, len(vals)/2)}
		for j := 1; j+1 < len(vals); j += 2 {
			snap.Positions = append(snap.Positions, dynamo.Vec2{X: vals[j], Y: vals[j+1]})
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

type ExportData struct {
	Run     RunMetadata      `json:"run"`
	Samples []metrics.Sample `json:"samples"`
}

// ExportJSON writes a run's metadata and samples as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	for _, smp := range samples {
		if !sampleFinite(smp) {
			return fmt.Errorf("run %s: sample at t=%g: %w", runID, smp.Time, dynamo.ErrInvalidState)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Samples: samples})
}

// ExportCSV copies a run's samples table to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
