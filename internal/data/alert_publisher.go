package data

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"tracktok/internal/domain"
	"tracktok/pkg/events"
)

// alertNotificationPayload is the body of an alert.notification.pending event.
type alertNotificationPayload struct {
	AlertID    string         `json:"alert_id"`
	AlertType  string         `json:"alert_type"`
	Severity   string         `json:"severity"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Recipients []string       `json:"recipients"`
}

// kafkaAlertPublisher hands pending alert notifications to the external
// notifier over kafka.
type kafkaAlertPublisher struct {
	publisher events.Publisher
	log       *zap.Logger
}

// NewKafkaAlertPublisher creates a kafka-backed alert publisher.
func NewKafkaAlertPublisher(publisher events.Publisher, logger *zap.Logger) domain.AlertPublisher {
	return &kafkaAlertPublisher{publisher: publisher, log: logger}
}

// PublishAlertPending implements domain.AlertPublisher.
func (p *kafkaAlertPublisher) PublishAlertPending(ctx context.Context, alert *domain.Alert, recipients []string) error {
	payload, err := json.Marshal(alertNotificationPayload{
		AlertID:    alert.ID,
		AlertType:  string(alert.Type),
		Severity:   string(alert.Severity),
		EntityType: alert.EntityType,
		EntityID:   alert.EntityID,
		Title:      alert.Title,
		Message:    alert.Message,
		Metadata:   alert.Metadata,
		Recipients: recipients,
	})
	if err != nil {
		return err
	}

	return p.publisher.Publish(ctx, &events.Event{
		EventType: "alert.notification.pending",
		TenantID:  alert.TenantID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// noopAlertPublisher drops notifications. Used when kafka is disabled; the
// alerts themselves are still persisted and visible in the UI.
type noopAlertPublisher struct {
	log *zap.Logger
}

// NewNoopAlertPublisher creates a publisher that logs and discards.
func NewNoopAlertPublisher(logger *zap.Logger) domain.AlertPublisher {
	return &noopAlertPublisher{log: logger}
}

// PublishAlertPending implements domain.AlertPublisher.
func (p *noopAlertPublisher) PublishAlertPending(_ context.Context, alert *domain.Alert, recipients []string) error {
	p.log.Debug("notification dispatch disabled, dropping alert event",
		zap.String("alert_id", alert.ID),
		zap.Int("recipients", len(recipients)),
	)
	return nil
}
