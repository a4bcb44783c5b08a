package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"mlstudio"
	"mlstudio/internal/api/models"
	"mlstudio/internal/api/repo"
	"mlstudio/internal/realtime"
	"mlstudio/pkg"
)

type RunService struct {
	runRepo         *repo.ScriptRunRepository
	userRepo        *repo.UserRepository
	workflowService *WorkflowService
	compileService  *CompileService
	config          mlstudio.AppConfig
	logger          zerolog.Logger
}

func NewRunService() *RunService {
	return &RunService{
		runRepo:         repo.NewScriptRunRepository(),
		userRepo:        repo.NewUserRepository(),
		workflowService: NewWorkflowService(),
		compileService:  NewCompileService(),
		config:          mlstudio.GetConfig(),
		logger:          mlstudio.Logger,
	}
}

// Run compiles a workflow and executes the script in the background. The
// returned run is in pending state; progress is published over NATS and the
// final state lands in the script_run table.
func (slf *RunService) Run(workflowID uint) (*models.ScriptRun, error) {
	workflow, err := slf.workflowService.FindByID(workflowID)
	if err != nil {
		return nil, err
	}

	result, _, err := slf.compileService.CompileWorkflow(workflow.ID)
	if err != nil {
		return nil, err
	}
	if result.HasErrors() {
		return nil, fmt.Errorf("workflow has %d failing nodes, fix them before running", len(result.NodeErrors))
	}

	run := models.ScriptRun{
		WorkflowID: workflow.ID,
		Status:     models.RunStatusPending,
		Script:     result.Script,
		StartedAt:  time.Now(),
	}
	if err := slf.runRepo.Create(&run); err != nil {
		slf.logger.Error().Err(err).Uint("workflowId", workflowID).Msg("Error creating script run")
		return nil, err
	}

	go slf.execute(run, *workflow)

	return &run, nil
}

// FindByID retrieves a single run
func (slf *RunService) FindByID(id uint) (*models.ScriptRun, error) {
	run, err := slf.runRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// History retrieves the most recent runs of a workflow
func (slf *RunService) History(workflowID uint, limit int) ([]models.ScriptRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return slf.runRepo.FindByWorkflow(workflowID, limit)
}

func (slf *RunService) execute(run models.ScriptRun, workflow models.Workflow) {
	reporter := realtime.NewProgressReporter(slf.config.NatsURL, workflow.ID, slf.logger)
	defer reporter.Close()

	reporter.Report(run.ID, realtime.RunStatusStarted, "Run started")

	run.Status = models.RunStatusRunning
	run.StartedAt = time.Now()
	if err := slf.runRepo.Update(&run); err != nil {
		slf.logger.Error().Err(err).Uint("runId", run.ID).Msg("Error marking run as running")
	}
	reporter.Report(run.ID, realtime.RunStatusRunning, "Executing script")

	output, err := slf.runScript(run.Script, run.ID)

	now := time.Now()
	run.Output = output
	run.FinishedAt = &now

	if err != nil {
		run.Status = models.RunStatusFailed
		run.Error = err.Error()
		reporter.Report(run.ID, realtime.RunStatusFailed, err.Error())
		slf.logger.Warn().Err(err).Uint("runId", run.ID).Uint("workflowId", workflow.ID).Msg("Script run failed")
		slf.sendFailureEmail(workflow, run, err)
	} else {
		run.Status = models.RunStatusSucceeded
		reporter.Report(run.ID, realtime.RunStatusCompleted, "Run completed successfully")
		slf.logger.Info().Uint("runId", run.ID).Uint("workflowId", workflow.ID).Msg("Script run completed")
	}

	if err := slf.runRepo.Update(&run); err != nil {
		slf.logger.Error().Err(err).Uint("runId", run.ID).Msg("Error saving run result")
	}
}

// runScript writes the script to a scratch directory and executes it with
// the configured Python interpreter under the configured timeout.
func (slf *RunService) runScript(script string, runID uint) (string, error) {
	dir, err := os.MkdirTemp(slf.config.Runner.WorkDir, fmt.Sprintf("run-%d-", runID))
	if err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}
	defer os.RemoveAll(dir)

	scriptPath := filepath.Join(dir, "pipeline.py")
	if err := os.WriteFile(scriptPath, []byte(script), 0o600); err != nil {
		return "", fmt.Errorf("failed to write script: %w", err)
	}

	timeout := time.Duration(slf.config.Runner.Timeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	output, err := pkg.RunCommandCapture(ctx, dir, slf.config.Runner.PythonBin, scriptPath)
	if ctx.Err() == context.DeadlineExceeded {
		return output, fmt.Errorf("script timed out after %s", timeout)
	}
	if err != nil {
		return output, fmt.Errorf("script exited with error: %w", err)
	}
	return output, nil
}

// sendFailureEmail notifies the workflow owner that a run failed.
func (slf *RunService) sendFailureEmail(workflow models.Workflow, run models.ScriptRun, runErr error) {
	owner, err := slf.userRepo.FindByID(workflow.OwnerID)
	if err != nil {
		slf.logger.Error().Err(err).Uint("workflowId", workflow.ID).Msg("Failed to load owner for failure email")
		return
	}

	truncatedOutput := run.Output
	if len(truncatedOutput) > 50000 {
		truncatedOutput = truncatedOutput[:50000] + "\n\n... (output truncated)"
	}

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #d32f2f;">Workflow run failed: %s</h2>
  <table style="border-collapse: collapse; margin-bottom: 16px;">
    <tr><td style="padding: 4px 12px; font-weight: bold;">Workflow ID</td><td style="padding: 4px 12px;">%d</td></tr>
    <tr><td style="padding: 4px 12px; font-weight: bold;">Run ID</td><td style="padding: 4px 12px;">%d</td></tr>
    <tr><td style="padding: 4px 12px; font-weight: bold;">Date</td><td style="padding: 4px 12px;">%s</td></tr>
    <tr><td style="padding: 4px 12px; font-weight: bold;">Error</td><td style="padding: 4px 12px; color: #d32f2f;">%s</td></tr>
  </table>
  <h3>Output</h3>
  <pre style="background: #f5f5f5; padding: 12px; border-radius: 4px; overflow-x: auto; font-size: 12px; max-height: 600px; overflow-y: auto;">%s</pre>
</body>
</html>`,
		workflow.Name,
		workflow.ID,
		run.ID,
		time.Now().Format("2006-01-02 15:04:05"),
		runErr.Error(),
		truncatedOutput,
	)

	msg := pkg.EmailMessage{
		To:      []string{owner.Email},
		Subject: fmt.Sprintf("[ML Studio] Workflow run failed: %s", workflow.Name),
		Body:    body,
		IsHTML:  true,
	}
	if run.Output != "" {
		// Full output goes as an attachment, the body only shows a slice
		msg.Attachments = append(msg.Attachments,
			pkg.AttachmentFromText(fmt.Sprintf("run-%d-output.txt", run.ID), run.Output))
	}

	if err := pkg.SendEmail(msg); err != nil {
		slf.logger.Error().Err(err).Uint("runId", run.ID).Msg("Failed to send failure notification email")
	} else {
		slf.logger.Info().Uint("runId", run.ID).Str("recipient", owner.Email).Msg("Failure notification email sent")
	}
}
