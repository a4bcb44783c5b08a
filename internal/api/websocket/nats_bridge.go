package websocket

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"mlstudio/internal/realtime"
)

// NATSBridge subscribes to run progress subjects and relays them into the Hub,
// so editors watching a workflow see runs advance live.
type NATSBridge struct {
	conn   *nats.Conn
	hub    *Hub
	logger zerolog.Logger
}

func NewNATSBridge(natsURL string, hub *Hub, logger zerolog.Logger) (*NATSBridge, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSBridge{conn: nc, hub: hub, logger: logger}, nil
}

// Subscribe listens for progress messages on workflow.*.run.progress
func (b *NATSBridge) Subscribe() error {
	subject := "workflow.*.run.progress"
	_, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		workflowID, err := parseWorkflowIDFromSubject(msg.Subject)
		if err != nil {
			b.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("Bad progress subject")
			return
		}

		var progress realtime.RunProgress
		if err := json.Unmarshal(msg.Data, &progress); err != nil {
			b.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("Bad progress payload")
			return
		}
		progress.WorkflowID = workflowID

		b.hub.Broadcast <- NewRunProgressMessage(progress)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %q: %w", subject, err)
	}

	b.logger.Info().Str("subject", subject).Msg("NATS bridge subscribed")
	return nil
}

// Close drains the NATS connection.
func (b *NATSBridge) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Warn().Err(err).Msg("NATS drain failed")
	}
}

// parseWorkflowIDFromSubject extracts the ID from "workflow.<id>.run.progress"
func parseWorkflowIDFromSubject(subject string) (uint, error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("expected 4 parts, got %d", len(parts))
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid workflow id %q: %w", parts[1], err)
	}
	return uint(id), nil
}
