package consumer_test

import (
	"context"
	"encoding/json"
	"testing"

	"traveltrust/config"
	"traveltrust/infras/kafka/mocks"
	"traveltrust/internal/domains/journal/consumer"
	"traveltrust/internal/domains/journal/model/dto"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func encode(t *testing.T, msg dto.Message) kafkaGo.Message {
	t.Helper()

	value, err := json.Marshal(msg)
	require.NoError(t, err)

	return kafkaGo.Message{Key: []byte(msg.TxID), Value: value}
}

func TestRun(t *testing.T) {
	created := dto.Message{TxID: "tx-1", Type: "escrow.bookingCreated", Sender: "0xc1", Attributes: map[string]string{"bookingId": "1"}}
	raised := dto.Message{TxID: "tx-2", Type: "dispute.raised", Sender: "0xc1"}

	tests := []struct {
		name       string
		group      string
		wantGroup  string
		typePrefix string
		want       []dto.Message
	}{
		{
			name:      "all events with default group",
			wantGroup: "traveltrust-tail",
			want:      []dto.Message{created, raised},
		},
		{
			name:       "prefix filter with configured group",
			group:      "audit",
			wantGroup:  "audit",
			typePrefix: "escrow.",
			want:       []dto.Message{created},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocks.NewMockClient(ctrl)

			cfg := &config.Config{}
			cfg.Kafka.Topic = "traveltrust.events"
			cfg.Kafka.ConsumerGroup = tt.group

			client.EXPECT().
				Consume(gomock.Any(), tt.wantGroup, "traveltrust.events", gomock.Any()).
				Do(func(_ context.Context, _, _ string, handler func(kafkaGo.Message)) {
					handler(encode(t, created))
					handler(kafkaGo.Message{Value: []byte("not json")})
					handler(encode(t, raised))
				})

			var got []dto.Message

			consumer.New(cfg, client).Run(context.Background(), tt.typePrefix, func(msg dto.Message) {
				got = append(got, msg)
			})

			assert.Equal(t, tt.want, got)
		})
	}
}
