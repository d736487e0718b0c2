package metrics

import (
	"net/http"
	"strconv"
	"time"

	"flash-delivery/order-svc/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg             *prometheus.Registry
	OrdersCreated   prometheus.Counter
	OrdersReplayed  prometheus.Counter
	OrdersRejected  *prometheus.CounterVec
	OrderValue      prometheus.Counter
	StatusUpdates   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "flash_orders_created_total"})
	replayed := prometheus.NewCounter(prometheus.CounterOpts{Name: "flash_orders_replayed_total"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "flash_orders_rejected_total"}, []string{"reason"})
	value := prometheus.NewCounter(prometheus.CounterOpts{Name: "flash_order_value_total"})
	statuses := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "flash_order_status_updates_total"}, []string{"status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flash_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "code"})

	r.MustRegister(created, replayed, rejected, value, statuses, duration)
	return &Registry{
		reg:             r,
		OrdersCreated:   created,
		OrdersReplayed:  replayed,
		OrdersRejected:  rejected,
		OrderValue:      value,
		StatusUpdates:   statuses,
		RequestDuration: duration,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) OrderCreated(totalPrice int) {
	r.OrdersCreated.Inc()
	r.OrderValue.Add(float64(totalPrice))
}

func (r *Registry) OrderReplayed() { r.OrdersReplayed.Inc() }

func (r *Registry) OrderRejected(reason string) { r.OrdersRejected.WithLabelValues(reason).Inc() }

func (r *Registry) StatusUpdated(status domain.Status) {
	r.StatusUpdates.WithLabelValues(string(status)).Inc()
}

func (r *Registry) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	r.RequestDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}
