package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/30-dung/salon-web/internal/domain"
	pkgkafka "github.com/30-dung/salon-web/pkg/kafka"
	"github.com/30-dung/salon-web/pkg/logger"
)

type recordingKafka struct {
	topics []string
	events []*pkgkafka.Event
	err    error
}

func (r *recordingKafka) Publish(_ context.Context, topic string, ev *pkgkafka.Event) error {
	if r.err != nil {
		return r.err
	}
	r.topics = append(r.topics, topic)
	r.events = append(r.events, ev)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "salon.appointment.created", TopicAppointmentCreated)
	assert.Equal(t, "salon.appointment.canceled", TopicAppointmentCanceled)
	assert.Equal(t, "salon.review.created", TopicReviewCreated)
	assert.Equal(t, "salon.review.reply-created", TopicReplyCreated)
}

func TestProducer_PublishAppointmentCreated(t *testing.T) {
	k := &recordingKafka{}
	p := NewProducer(k, discard())
	start := domain.NewLocalDateTime(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	appt := &domain.Appointment{
		ID:           321,
		Store:        &domain.Store{ID: 12},
		StoreService: &domain.StoreService{ID: 45},
		Employee:     &domain.Employee{ID: 7},
		StartTime:    start,
		EndTime:      domain.NewLocalDateTime(start.Add(30 * time.Minute)),
	}

	require.NoError(t, p.PublishAppointmentCreated(context.Background(), "sid-1", appt))

	require.Len(t, k.events, 1)
	assert.Equal(t, TopicAppointmentCreated, k.topics[0])
	ev := k.events[0]
	assert.Equal(t, "321", ev.AggregateID)
	assert.Equal(t, AggregateTypeAppointment, ev.AggregateType)
	assert.Equal(t, SourceSalonWeb, ev.Source)

	var data AppointmentCreatedData
	require.NoError(t, json.Unmarshal(ev.Data, &data))
	assert.Equal(t, AppointmentCreatedData{
		AppointmentID:  321,
		StoreID:        12,
		StoreServiceID: 45,
		EmployeeID:     7,
		StartTime:      "2025-06-01T09:00:00",
		EndTime:        "2025-06-01T09:30:00",
		SessionID:      "sid-1",
	}, data)
}

func TestProducer_PublishReplyCreated(t *testing.T) {
	k := &recordingKafka{}
	p := NewProducer(k, discard())
	parent := int64(5)

	require.NoError(t, p.PublishReplyCreated(context.Background(), 10, domain.ReplyRequest{UserID: 3, Comment: "hi", ParentReplyID: &parent}))

	require.Len(t, k.events, 1)
	assert.Equal(t, TopicReplyCreated, k.topics[0])
	var data ReplyCreatedData
	require.NoError(t, json.Unmarshal(k.events[0].Data, &data))
	assert.Equal(t, int64(10), data.ReviewID)
	require.NotNil(t, data.ParentReplyID)
	assert.Equal(t, int64(5), *data.ParentReplyID)
}

func TestProducer_CarriesRequestContext(t *testing.T) {
	k := &recordingKafka{}
	p := NewProducer(k, discard())
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	ctx = logger.WithSessionID(ctx, "sid-1")
	ctx = logger.WithUserID(ctx, "3")

	require.NoError(t, p.PublishReviewCreated(ctx, domain.ReviewRequest{AppointmentID: 100, UserID: 3}))

	require.Len(t, k.events, 1)
	ev := k.events[0]
	assert.Equal(t, "corr-1", ev.CorrelationID)
	assert.Equal(t, map[string]string{MetadataSessionID: "sid-1", MetadataUserID: "3"}, ev.Metadata)
}

func TestProducer_AnonymousRequestHasNoMetadata(t *testing.T) {
	k := &recordingKafka{}
	p := NewProducer(k, discard())

	require.NoError(t, p.PublishAppointmentCanceled(context.Background(), "sid", 1, 2))

	require.Len(t, k.events, 1)
	assert.Empty(t, k.events[0].CorrelationID)
	assert.Nil(t, k.events[0].Metadata)
}

func TestProducer_PublishError(t *testing.T) {
	k := &recordingKafka{err: errors.New("broker down")}
	p := NewProducer(k, discard())

	err := p.PublishAppointmentCanceled(context.Background(), "sid", 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish salon.appointment.canceled event")
}

func TestLogPublisher(t *testing.T) {
	var pub Publisher = NewLogPublisher(discard())
	ctx := context.Background()
	assert.NoError(t, pub.PublishAppointmentCreated(ctx, "sid", &domain.Appointment{ID: 1}))
	assert.NoError(t, pub.PublishAppointmentCanceled(ctx, "sid", 1, 2))
	assert.NoError(t, pub.PublishReviewCreated(ctx, domain.ReviewRequest{AppointmentID: 1}))
	assert.NoError(t, pub.PublishReplyCreated(ctx, 1, domain.ReplyRequest{}))
}

var _ Publisher = (*Producer)(nil)
