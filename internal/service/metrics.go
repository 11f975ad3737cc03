package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingSubmissions counts appointment submissions by result.
	BookingSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_booking_submissions_total",
			Help: "Total number of booking submissions by result",
		},
		[]string{"result"},
	)

	// AppointmentCancellations counts successful cancellations.
	AppointmentCancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "salon_appointment_cancellations_total",
			Help: "Total number of appointments canceled through the web client",
		},
	)

	// ReviewSubmissions counts review and reply submissions by kind and result.
	ReviewSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_review_submissions_total",
			Help: "Total number of review and reply submissions",
		},
		[]string{"kind", "result"},
	)

	// StoreSearches counts debounced store searches by outcome.
	StoreSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_store_searches_total",
			Help: "Total number of store searches by outcome",
		},
		[]string{"outcome"},
	)
)

func resultLabel(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
