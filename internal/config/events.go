package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/crm-service/internal/events"
)

var errNoKafkaBrokers = errors.New("kafka publisher requires at least one broker")

// EventConfig selects where lead, quiz and export events go. Kafka
// messages are keyed by company, so each tenant's events keep their order.
type EventConfig struct {
	Enabled      bool
	Publisher    string // kafka or mock
	KafkaBrokers string
	LeadTopic    string
}

// GetKafkaBrokers returns the comma separated broker list as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	return splitList(c.KafkaBrokers)
}

// Topic returns the configured lead topic or events.DefaultLeadTopic.
func (c *EventConfig) Topic() string {
	if topic := strings.TrimSpace(c.LeadTopic); topic != "" {
		return topic
	}
	return events.DefaultLeadTopic
}

// CreateEventPublisher builds the lead event publisher. Disabled or unknown
// publishers fall back to the in-memory one, a kafka publisher without
// brokers is a configuration error.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Lead events disabled, keeping them in memory")
		return events.NewMockEventPublisher(logger), nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Publisher)) {
	case "kafka":
		brokers := c.GetKafkaBrokers()
		if len(brokers) == 0 {
			return nil, errNoKafkaBrokers
		}
		logger.Info("Publishing lead events to Kafka",
			"brokers", brokers,
			"topic", c.Topic(),
			"partition_key", events.PartitionKey)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: brokers,
			TopicName:    c.Topic(),
			Logger:       logger,
		})
	case "mock":
		logger.Info("Keeping lead events in memory")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown lead event publisher, keeping events in memory", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}
