package metrics

import "time"

// Outcome labels for rebuilds.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Recorder receives build and request observations. NoopRecorder is used
// when metrics are disabled.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string)
	SetPosts(n int)
	AddWarnings(n int)
	ObserveRequest(route string, status int, d time.Duration)
	IncToggle(mode string)
}

type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string) {}
func (NoopRecorder) SetPosts(int) {}
func (NoopRecorder) AddWarnings(int) {}
func (NoopRecorder) ObserveRequest(string, int, time.Duration) {}
func (NoopRecorder) IncToggle(string) {}

// Or returns r, or a NoopRecorder when r is nil.
func Or(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
