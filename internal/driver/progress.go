package driver

import "time"

// Stage describes a step of the per-file repair loop.
type Stage string

const (
	StageScan     Stage = "scan"
	StageClassify Stage = "classify"
	StageTrack    Stage = "track"
	StageRules    Stage = "rules"
	StageApply    Stage = "apply"
	StageVerify   Stage = "verify"
	StageCommit   Stage = "commit"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusWorking    Status = "working"
	StatusFixed      Status = "fixed"
	StatusUnresolved Status = "unresolved"
	StatusError      Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Pass    int
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
