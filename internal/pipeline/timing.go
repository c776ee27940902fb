package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// TimingEnv names a JSONL file that receives stage timings even without --timing
const TimingEnv = "TEW_ATTRS_TIMING_JSONL"

type timingEvent struct {
	Phase      string  `json:"phase"`
	Kind       string  `json:"kind"`
	Status     string  `json:"status,omitempty"`
	StartMS    float64 `json:"start_ms"`
	DurationMS float64 `json:"duration_ms"`
	EndMS      float64 `json:"end_ms"`
}

type timingRecorder struct {
	enabled bool
	start   time.Time
	events  []timingEvent
	file    *os.File
	enc     *json.Encoder
	err     error
}

func newTimingRecorder(start time.Time, path string) *timingRecorder {
	tr := &timingRecorder{start: start}
	if path == "" {
		return tr
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tr.err = err
		return tr
	}
	f, err := os.Create(path)
	if err != nil {
		tr.err = err
		return tr
	}
	tr.enabled = true
	tr.file = f
	tr.enc = json.NewEncoder(f)
	return tr
}

func (tr *timingRecorder) Enabled() bool {
	return tr != nil && tr.enabled
}

func (tr *timingRecorder) Err() error {
	if tr == nil {
		return nil
	}
	return tr.err
}

func (tr *timingRecorder) Close() {
	if tr == nil || tr.file == nil {
		return
	}
	_ = tr.file.Close()
}

// RecordStage logs one finished stage; start is when the stage began
func (tr *timingRecorder) RecordStage(phase string, start time.Time, status string) {
	if tr == nil || !tr.enabled {
		return
	}
	startMS := durationToMS(start.Sub(tr.start))
	durationMS := durationToMS(time.Since(start))
	event := timingEvent{
		Phase:      phase,
		Kind:       "stage",
		Status:     status,
		StartMS:    startMS,
		DurationMS: durationMS,
		EndMS:      startMS + durationMS,
	}
	tr.events = append(tr.events, event)
	if tr.enc != nil {
		_ = tr.enc.Encode(event)
	}
}

func durationToMS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000_000.0
}

func (p *Pipeline) resolveTimingPath() string {
	if envPath := os.Getenv(TimingEnv); envPath != "" {
		return envPath
	}
	if !p.Timing {
		return ""
	}
	if p.TimingPath != "" {
		return p.TimingPath
	}
	return filepath.Join(p.Config.OutputDir(), "timing.jsonl")
}
