package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

type RunStatus string

const (
	RunStatusStarted   RunStatus = "started"
	RunStatusCompiled  RunStatus = "compiled"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunProgress is one progress update for a workflow run, published on NATS
// and relayed to websocket subscribers.
type RunProgress struct {
	RunID      uint      `json:"runId"`
	WorkflowID uint      `json:"workflowId"`
	Status     RunStatus `json:"status"`
	Message    string    `json:"message"`
}

// RunSubject is the NATS subject carrying progress for one workflow.
func RunSubject(workflowID uint) string {
	return fmt.Sprintf("workflow.%d.run.progress", workflowID)
}

// ProgressReporter publishes run progress on NATS. Best-effort: a failed
// connection yields a no-op reporter so a run never fails on reporting.
type ProgressReporter struct {
	conn       *nats.Conn
	workflowID uint
	logger     zerolog.Logger
	noop       bool
}

func NewProgressReporter(natsURL string, workflowID uint, logger zerolog.Logger) *ProgressReporter {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		logger.Warn().Err(err).Str("url", natsURL).Msg("NATS connection failed, progress reporting disabled")
		return &ProgressReporter{noop: true, workflowID: workflowID, logger: logger}
	}

	return &ProgressReporter{
		conn:       nc,
		workflowID: workflowID,
		logger:     logger,
	}
}

func (slf *ProgressReporter) Close() {
	if slf.noop || slf.conn == nil {
		return
	}
	if err := slf.conn.Drain(); err != nil {
		slf.logger.Warn().Err(err).Msg("NATS drain error")
	}
}

func (slf *ProgressReporter) Report(runID uint, status RunStatus, message string) {
	progress := RunProgress{
		RunID:      runID,
		WorkflowID: slf.workflowID,
		Status:     status,
		Message:    message,
	}

	if slf.noop {
		slf.logger.Debug().Uint("runId", runID).Str("status", string(status)).Msg("Progress (no-op)")
		return
	}

	data, err := json.Marshal(progress)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Progress marshal error")
		return
	}
	if err := slf.conn.Publish(RunSubject(slf.workflowID), data); err != nil {
		slf.logger.Warn().Err(err).Msg("Progress publish error")
	}
}
