package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/logger"
	"github.com/smukkama/aquasure-server/internal/protocol"
	"github.com/smukkama/aquasure-server/internal/queue"
)

// AlertStore persists alerts
type AlertStore interface {
	InsertAlertIfAbsent(ctx context.Context, alert *database.Alert) (*database.Alert, bool, error)
}

// StateStore remembers per-sample progress across redeliveries
type StateStore interface {
	GetState(ctx context.Context, sampleID uuid.UUID) (*AlertState, error)
	SetState(ctx context.Context, sampleID uuid.UUID, state *AlertState) error
}

// Publisher sends encoded events
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Evaluator raises alerts for recorded samples. Redelivered events never
// store a second alert, and once a sample reaches NOTIFIED they are skipped.
type Evaluator struct {
	store     AlertStore
	states    StateStore
	publisher Publisher
	log       *logger.Logger
	now       func() time.Time
}

// NewEvaluator creates a new alert evaluator
func NewEvaluator(store AlertStore, states StateStore, publisher Publisher, log *logger.Logger) *Evaluator {
	return &Evaluator{
		store:     store,
		states:    states,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle implements queue.Handler for the sample topic
func (e *Evaluator) Handle(ctx context.Context, msg kafka.Message) error {
	event, err := protocol.DecodeSampleRecorded(msg.Value)
	if err != nil {
		return fmt.Errorf("%w: %v", queue.ErrPoison, err)
	}
	return e.EvaluateSample(ctx, event)
}

// EvaluateSample raises the alert a sample event calls for, if any
func (e *Evaluator) EvaluateSample(ctx context.Context, event *protocol.SampleRecorded) error {
	alert := Derive(event.Sample(), e.now())
	if alert == nil {
		return nil
	}

	state, err := e.states.GetState(ctx, event.SampleID)
	if err != nil {
		return err
	}
	if state.Status == AlertStateNotified {
		e.log.Debug("alert already notified", "sample_id", event.SampleID)
		return nil
	}

	stored, created, err := e.store.InsertAlertIfAbsent(ctx, alert)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	if created {
		e.log.Info("alert raised",
			"alert_id", stored.ID,
			"sample", event.SampleCode,
			"project", event.ProjectName,
			"priority", stored.Priority,
			"hmpi", event.HMPIValue)
	}

	if state.Status != AlertStateRaised {
		if err := e.setState(ctx, event.SampleID, AlertStateRaised, stored.ID); err != nil {
			return err
		}
	}

	data, err := protocol.EncodeAlertRaised(protocol.NewAlertRaised(stored, event))
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}
	if err := e.publisher.Publish(ctx, event.SampleID.String(), data); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	return e.setState(ctx, event.SampleID, AlertStateNotified, stored.ID)
}

func (e *Evaluator) setState(ctx context.Context, sampleID uuid.UUID, status string, alertID uuid.UUID) error {
	return e.states.SetState(ctx, sampleID, &AlertState{
		Status:    status,
		AlertID:   alertID,
		UpdatedAt: e.now(),
	})
}
