package pipeline

import (
	"log/slog"

	"rigconvert/internal/asset"
	"rigconvert/internal/logging"
)

// Stage names reported to observers and logs.
const (
	StageDiscover    = "discover"
	StageMaterials   = "materials"
	StageClips       = "clips"
	StageBlendTrees  = "blend_trees"
	StageControllers = "controllers"
	StageRig         = "rig"
)

// Phase marks where in an asset's conversion an Event was emitted.
type Phase string

const (
	PhaseStart     Phase = "start"
	PhaseConverted Phase = "converted"
	PhasePassed    Phase = "passed"
	PhaseFailed    Phase = "failed"
)

// Event describes progress on one asset.
type Event struct {
	Stage   string
	Total   int
	Index   int
	AssetID asset.ID
	Name    string
	Phase   Phase
	// Target is the converted id for PhaseConverted.
	Target asset.ID
	Err    error
}

// Observer receives progress events synchronously.
type Observer interface {
	Progress(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Progress calls f.
func (f ObserverFunc) Progress(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Progress(Event) {}

// LogObserver writes progress events to logger at debug level and failures
// at error level.
func LogObserver(logger *slog.Logger) Observer {
	logger = logging.NewComponentLogger(logger, "progress")
	return ObserverFunc(func(e Event) {
		attrs := []logging.Attr{
			logging.String(logging.FieldStage, e.Stage),
			logging.String(logging.FieldAssetID, string(e.AssetID)),
			logging.String("name", e.Name),
			logging.Int("index", e.Index+1),
			logging.Int("total", e.Total),
			logging.String("phase", string(e.Phase)),
		}
		if e.Phase == PhaseFailed {
			attrs = append(attrs, logging.Error(e.Err))
			logging.ErrorWithContext(logger, "asset conversion failed", "asset_failed", attrs...)
			return
		}
		if !e.Target.IsZero() {
			attrs = append(attrs, logging.String("target_id", string(e.Target)))
		}
		logger.Debug("asset progress", logging.Args(attrs...)...)
	})
}

type multiObserver []Observer

func (m multiObserver) Progress(e Event) {
	for _, o := range m {
		o.Progress(e)
	}
}

// Observers fans events out to every non-nil observer.
func Observers(observers ...Observer) Observer {
	var out multiObserver
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return nopObserver{}
	}
	return out
}
