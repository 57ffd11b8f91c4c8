package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type jobKind string

type jobStatus string

const (
	jobKindLibrary    jobKind = "library"
	jobKindPage       jobKind = "page"
	jobKindWarm       jobKind = "warm"
	jobKindAttachment jobKind = "attachment"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

// jobResultEnvelope wraps a finished job's payload message together with its
// closing snapshot. Update logs the snapshot and feeds the payload back
// through itself.
type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus stamps background commands with IDs and lifecycle snapshots so the
// model can observe what is in flight without owning goroutines itself.
type jobBus struct {
	counter int64
	logger  zerolog.Logger
}

func newJobBus(logger zerolog.Logger) *jobBus {
	return &jobBus{logger: logger}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Start wraps the runner in a two-step command: an immediate running signal,
// then the result envelope once the runner returns. The runner's error marks
// the job failed on the bus; payload messages carry their own domain errors.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		ctx := context.Background()
		payload, err := runner(ctx)
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		event := b.logger.Debug()
		if err != nil {
			event = b.logger.Warn().Err(err)
		}
		event.Str("job", id).Str("status", string(snapshot.Status)).Dur("duration", snapshot.Duration).Msg("background job finished")
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}
