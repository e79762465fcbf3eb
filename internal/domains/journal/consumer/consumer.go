package consumer

import (
	"context"
	"strings"

	"traveltrust/config"
	"traveltrust/infras/kafka"
	"traveltrust/internal/domains/journal/model/dto"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const defaultConsumerGroup = "traveltrust-tail"

// Consumer reads the journal events the service publishes to Kafka.
type Consumer struct {
	client kafka.Client
	group  string
	topic  string
}

func New(cfg *config.Config, client kafka.Client) *Consumer {
	group := cfg.Kafka.ConsumerGroup
	if group == "" {
		group = defaultConsumerGroup
	}

	return &Consumer{
		client: client,
		group:  group,
		topic:  cfg.Kafka.Topic,
	}
}

// Run blocks until ctx is done, passing every event whose type starts with
// typePrefix to handle. Undecodable messages are logged and skipped.
func (c *Consumer) Run(ctx context.Context, typePrefix string, handle func(dto.Message)) {
	log.Info().Str("topic", c.topic).Str("group", c.group).Str("typePrefix", typePrefix).Msg("tailing journal events")

	c.client.Consume(ctx, c.group, c.topic, func(raw kafkaGo.Message) {
		msg, err := kafka.DecodeKafkaMessage[dto.Message](raw)
		if err != nil {
			log.Warn().Err(err).Int64("offset", raw.Offset).Msg("skipping undecodable journal event")

			return
		}

		if !strings.HasPrefix(msg.Type, typePrefix) {
			return
		}

		handle(msg)
	})
}
