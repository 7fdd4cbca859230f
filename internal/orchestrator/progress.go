package orchestrator

// Stage is one of the four pipeline steps. Stage values double as the
// service tag of their log entries.
type Stage string

// Pipeline stages, in execution order
const (
	StageName         Stage = "name"
	StageTagline      Stage = "tagline"
	StageColorPalette Stage = "colorPalette"
	StageLogo         Stage = "logo"
)

// Stages returns the pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{StageName, StageTagline, StageColorPalette, StageLogo}
}

// Service returns the log tag for the stage.
func (s Stage) Service() Service {
	return Service(s)
}

// stageWeight is the share of overall progress one stage is worth.
const stageWeight = 25

// ProgressState is the per-stage and overall completion of a run.
type ProgressState struct {
	Logo         int `json:"logo"`
	Name         int `json:"name"`
	Tagline      int `json:"tagline"`
	ColorPalette int `json:"colorPalette"`
	Overall      int `json:"overall"`
}

// Tracker holds progress for one run. It is not safe for concurrent use;
// the orchestrator guards it with its own lock.
type Tracker struct {
	state ProgressState
}

// SetStage records a stage's completion, clamped to [0, 100], and recomputes Overall.
func (t *Tracker) SetStage(stage Stage, percent int) {
	percent = max(0, min(100, percent))
	switch stage {
	case StageName:
		t.state.Name = percent
	case StageTagline:
		t.state.Tagline = percent
	case StageColorPalette:
		t.state.ColorPalette = percent
	case StageLogo:
		t.state.Logo = percent
	default:
		return
	}
	t.state.Overall = t.Overall()
}

// Overall is 25 for every stage at 100%. Partial stages count for nothing.
func (t *Tracker) Overall() int {
	done := 0
	for _, p := range []int{t.state.Name, t.state.Tagline, t.state.ColorPalette, t.state.Logo} {
		if p == 100 {
			done++
		}
	}
	return done * stageWeight
}

// State returns a copy of the current progress.
func (t *Tracker) State() ProgressState {
	return t.state
}

// Reset zeroes every field.
func (t *Tracker) Reset() {
	t.state = ProgressState{}
}
