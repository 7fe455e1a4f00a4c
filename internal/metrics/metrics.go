package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "restaurant_booking",
			Name:      "reservation_created_total",
			Help:      "Count of reservations accepted into pending.",
		},
	)

	reservationSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restaurant_booking",
			Name:      "reservation_settled_total",
			Help:      "Count of confirmed reservations by payment method.",
		},
		[]string{"method"},
	)

	reservationCancelled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restaurant_booking",
			Name:      "reservation_cancelled_total",
			Help:      "Count of cancelled reservations by actor.",
		},
		[]string{"actor"},
	)

	reservationExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "restaurant_booking",
			Name:      "reservation_expired_total",
			Help:      "Count of pending reservations expired by the sweeper.",
		},
	)

	walletTransaction = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restaurant_booking",
			Name:      "wallet_transaction_total",
			Help:      "Count of wallet ledger entries by direction.",
		},
		[]string{"type"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationCreated,
			reservationSettled,
			reservationCancelled,
			reservationExpired,
			walletTransaction,
		)
	})
}

func IncReservationCreated() {
	reservationCreated.Inc()
}

func IncReservationSettled(method string) {
	reservationSettled.WithLabelValues(method).Inc()
}

func IncReservationCancelled(actor string) {
	reservationCancelled.WithLabelValues(actor).Inc()
}

func IncReservationExpired() {
	reservationExpired.Inc()
}

func IncWalletTransaction(kind string) {
	walletTransaction.WithLabelValues(kind).Inc()
}
