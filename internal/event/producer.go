package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/30-dung/salon-web/internal/domain"
	pkgkafka "github.com/30-dung/salon-web/pkg/kafka"
	"github.com/30-dung/salon-web/pkg/logger"
)

// Kafka topics for salon-web domain events.
var (
	TopicAppointmentCreated  = pkgkafka.Topic("appointment", "created")
	TopicAppointmentCanceled = pkgkafka.Topic("appointment", "canceled")
	TopicReviewCreated       = pkgkafka.Topic("review", "created")
	TopicReplyCreated        = pkgkafka.Topic("review", "reply-created")
)

const (
	AggregateTypeAppointment = "appointment"
	AggregateTypeReview      = "review"
)

// SourceSalonWeb identifies events originating from this service.
const SourceSalonWeb = "salon-web"

// Envelope metadata keys copied from the request context.
const (
	MetadataSessionID = "session_id"
	MetadataUserID    = "user_id"
)

// AppointmentCreatedData is the payload for appointment.created.
type AppointmentCreatedData struct {
	AppointmentID  int64  `json:"appointment_id"`
	StoreID        int64  `json:"store_id"`
	StoreServiceID int64  `json:"store_service_id"`
	EmployeeID     int64  `json:"employee_id"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	SessionID      string `json:"session_id"`
}

// AppointmentCanceledData is the payload for appointment.canceled.
type AppointmentCanceledData struct {
	AppointmentID int64  `json:"appointment_id"`
	UserID        int64  `json:"user_id"`
	SessionID     string `json:"session_id"`
}

// ReviewCreatedData is the payload for review.created.
type ReviewCreatedData struct {
	AppointmentID int64                 `json:"appointment_id"`
	UserID        int64                 `json:"user_id"`
	Ratings       []domain.ReviewTarget `json:"ratings"`
}

// ReplyCreatedData is the payload for review.reply-created.
type ReplyCreatedData struct {
	ReviewID      int64  `json:"review_id"`
	ParentReplyID *int64 `json:"parent_reply_id,omitempty"`
	UserID        int64  `json:"user_id"`
}

// Publisher is implemented by Producer and LogPublisher.
type Publisher interface {
	PublishAppointmentCreated(ctx context.Context, sessionID string, appt *domain.Appointment) error
	PublishAppointmentCanceled(ctx context.Context, sessionID string, appointmentID, userID int64) error
	PublishReviewCreated(ctx context.Context, req domain.ReviewRequest) error
	PublishReplyCreated(ctx context.Context, reviewID int64, req domain.ReplyRequest) error
}

type kafkaPublisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes salon-web domain events to Kafka.
type Producer struct {
	kafka  kafkaPublisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka kafkaPublisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceSalonWeb, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithMetadata(MetadataSessionID, logger.SessionIDFromContext(ctx)).
		WithMetadata(MetadataUserID, logger.UserIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishAppointmentCreated publishes an appointment.created event.
func (p *Producer) PublishAppointmentCreated(ctx context.Context, sessionID string, appt *domain.Appointment) error {
	data := AppointmentCreatedData{
		AppointmentID: appt.ID,
		StartTime:     appt.StartTime.Format(domain.LocalLayout),
		EndTime:       appt.EndTime.Format(domain.LocalLayout),
		SessionID:     sessionID,
	}
	if appt.Store != nil {
		data.StoreID = appt.Store.ID
	}
	if appt.StoreService != nil {
		data.StoreServiceID = appt.StoreService.ID
	}
	if appt.Employee != nil {
		data.EmployeeID = appt.Employee.ID
	}
	return p.publish(ctx, TopicAppointmentCreated, strconv.FormatInt(appt.ID, 10), AggregateTypeAppointment, data)
}

// PublishAppointmentCanceled publishes an appointment.canceled event.
func (p *Producer) PublishAppointmentCanceled(ctx context.Context, sessionID string, appointmentID, userID int64) error {
	data := AppointmentCanceledData{AppointmentID: appointmentID, UserID: userID, SessionID: sessionID}
	return p.publish(ctx, TopicAppointmentCanceled, strconv.FormatInt(appointmentID, 10), AggregateTypeAppointment, data)
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, req domain.ReviewRequest) error {
	data := ReviewCreatedData{AppointmentID: req.AppointmentID, UserID: req.UserID, Ratings: req.Ratings}
	return p.publish(ctx, TopicReviewCreated, strconv.FormatInt(req.AppointmentID, 10), AggregateTypeReview, data)
}

// PublishReplyCreated publishes a review.reply-created event.
func (p *Producer) PublishReplyCreated(ctx context.Context, reviewID int64, req domain.ReplyRequest) error {
	data := ReplyCreatedData{ReviewID: reviewID, ParentReplyID: req.ParentReplyID, UserID: req.UserID}
	return p.publish(ctx, TopicReplyCreated, strconv.FormatInt(reviewID, 10), AggregateTypeReview, data)
}

// LogPublisher logs events instead of publishing them. It is used when no
// Kafka brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (l *LogPublisher) log(ctx context.Context, topic string, id int64) error {
	l.logger.DebugContext(ctx, "event publishing disabled",
		slog.String("topic", topic),
		slog.Int64("aggregate_id", id),
	)
	return nil
}

func (l *LogPublisher) PublishAppointmentCreated(ctx context.Context, _ string, appt *domain.Appointment) error {
	return l.log(ctx, TopicAppointmentCreated, appt.ID)
}

func (l *LogPublisher) PublishAppointmentCanceled(ctx context.Context, _ string, appointmentID, _ int64) error {
	return l.log(ctx, TopicAppointmentCanceled, appointmentID)
}

func (l *LogPublisher) PublishReviewCreated(ctx context.Context, req domain.ReviewRequest) error {
	return l.log(ctx, TopicReviewCreated, req.AppointmentID)
}

func (l *LogPublisher) PublishReplyCreated(ctx context.Context, reviewID int64, _ domain.ReplyRequest) error {
	return l.log(ctx, TopicReplyCreated, reviewID)
}
