package otel_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"traveltrust/infras/otel"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestScopeRecordsLedgerAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("test").Start(context.Background(), "escrow.CompleteBooking")
	scope := otel.NewScope(span)

	guide := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	wei, ok := new(big.Int).SetString("500000000000000000", 10)
	require.True(t, ok)

	scope.SetAttributes(map[string]any{
		"booking.id":     uint64(7),
		"booking.amount": wei,
		"booking.guide":  guide,
		"dispute.open":   false,
	})
	scope.TraceIfError(nil)
	scope.TraceError(errors.New("Booking not confirmed"))
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	got := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		got[kv.Key] = kv.Value
	}

	assert.Equal(t, int64(7), got["booking.id"].AsInt64())
	assert.Equal(t, "500000000000000000", got["booking.amount"].AsString())
	assert.Equal(t, guide.Hex(), got["booking.guide"].AsString())
	assert.False(t, got["dispute.open"].AsBool())

	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "Booking not confirmed", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
}

func TestScopeKeepsLargeIDsExact(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("test").Start(context.Background(), "dispute.GetDispute")
	scope := otel.NewScope(span)
	scope.SetAttribute("dispute.id", uint64(1<<63))
	scope.End()

	attrs := recorder.Ended()[0].Attributes()
	require.Len(t, attrs, 1)
	assert.Equal(t, "9223372036854775808", attrs[0].Value.AsString())
}
