package kafka

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Event tests ---

func TestNewEvent_Envelope(t *testing.T) {
	payload := map[string]int64{"appointment_id": 321, "store_id": 12}

	ev, err := NewEvent("salon.appointment.created", "321", "appointment", "salon-web", payload)
	require.NoError(t, err)

	_, err = uuid.Parse(ev.EventID)
	assert.NoError(t, err, "event id is a uuid")
	assert.Equal(t, EnvelopeVersion, ev.Version)
	assert.Equal(t, time.UTC, ev.Timestamp.Location())
	assert.Nil(t, ev.Metadata)
	assert.JSONEq(t, `{"appointment_id":321,"store_id":12}`, string(ev.Data))
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent("salon.review.created", "1", "review", "salon-web", func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode salon.review.created payload")
}

func TestEvent_MetadataSkipsEmptyValues(t *testing.T) {
	ev, err := NewEvent("salon.review.created", "1", "review", "salon-web", nil)
	require.NoError(t, err)

	ev.WithCorrelationID("corr-1").
		WithMetadata("session_id", "sid-1").
		WithMetadata("user_id", "")

	assert.Equal(t, "corr-1", ev.CorrelationID)
	assert.Equal(t, map[string]string{"session_id": "sid-1"}, ev.Metadata)
}

func TestEvent_MarshalWireFormat(t *testing.T) {
	ev, err := NewEvent("salon.review.reply-created", "9", "review", "salon-web", map[string]int{"review_id": 9})
	require.NoError(t, err)
	ev.Timestamp = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ev.EventID = "evt-1"

	raw, err := ev.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"event_id": "evt-1",
		"event_type": "salon.review.reply-created",
		"aggregate_id": "9",
		"aggregate_type": "review",
		"version": 1,
		"timestamp": "2025-06-01T10:00:00Z",
		"source": "salon-web",
		"data": {"review_id": 9}
	}`, string(raw))
}

// --- ProducerConfig tests ---

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestDefaultProducerConfig_SingleBroker(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})
	assert.Len(t, cfg.Brokers, 1)
	assert.Equal(t, "localhost:9092", cfg.Brokers[0])
}

// --- Topic tests ---

func TestTopic_Format(t *testing.T) {
	got := Topic("appointment", "created")
	assert.Equal(t, "salon.appointment.created", got)
}

func TestTopic_Prefix(t *testing.T) {
	assert.Equal(t, "salon", TopicPrefix)
}

func TestTopic_VariousCombinations(t *testing.T) {
	tests := []struct {
		domain string
		action string
		want   string
	}{
		{"appointment", "created", "salon.appointment.created"},
		{"appointment", "canceled", "salon.appointment.canceled"},
		{"review", "created", "salon.review.created"},
		{"review", "reply-created", "salon.review.reply-created"},
	}

	for _, tt := range tests {
		t.Run(tt.domain+"."+tt.action, func(t *testing.T) {
			assert.Equal(t, tt.want, Topic(tt.domain, tt.action))
		})
	}
}

// --- Producer tests ---

func TestNewProducer_CreatesInstance(t *testing.T) {
	// NewProducer requires broker addresses but does not connect immediately.
	// We verify the returned producer is non-nil and can be closed.
	cfg := DefaultProducerConfig([]string{"localhost:19092"})
	p := NewProducer(cfg, nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)

	// Close should succeed even without a real broker.
	err := p.Close()
	assert.NoError(t, err)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(t.Context(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestPingBrokers_EmptySlice(t *testing.T) {
	err := PingBrokers(t.Context(), []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestHeaderCarrier_SetGetKeys(t *testing.T) {
	msg := &kafka.Message{Headers: []kafka.Header{{Key: "event_type", Value: []byte("review.created")}}}
	c := headerCarrier{msg: msg}

	c.Set("traceparent", "00-abc-def-01")
	c.Set("traceparent", "00-abc-xyz-01")

	assert.Equal(t, "00-abc-xyz-01", c.Get("traceparent"))
	assert.Equal(t, "review.created", c.Get("event_type"))
	assert.Empty(t, c.Get("missing"))
	assert.ElementsMatch(t, []string{"event_type", "traceparent"}, c.Keys())
	assert.Len(t, msg.Headers, 2)
}
