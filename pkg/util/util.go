package util

import (
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
)

type nopLogger struct{}

func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}

// NewRestyClient returns a client that never retries. Callers that want
// retries opt in on the returned client.
func NewRestyClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.
		New().
		SetLogger(nopLogger{}).
		SetTimeout(timeout)
	c.JSONMarshal = json.Marshal
	c.JSONUnmarshal = json.Unmarshal
	return c
}

// Ptr returns pointer of any value.
func Ptr[T any](t T) *T {
	return &t
}

// GetHistogramVec registers a latency histogram or returns the one already
// registered under the same name.
func GetHistogramVec(name, help string, labels ...string) (*prometheus.HistogramVec, error) {
	metrics := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: name,
		Help: help,
		Buckets: []float64{
			0.001, // 1ms
			0.005,
			0.01,
			0.025,
			0.05,
			0.1, // 100ms
			0.25,
			0.5,
			1.0,
			2.5,
			5.0,
			10.0,
		},
	}, labels)
	if err := prometheus.Register(metrics); err != nil {
		var registeredErr prometheus.AlreadyRegisteredError
		if errors.As(err, &registeredErr) {
			if existing, ok := registeredErr.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return metrics, nil
}

// GetCounterVec registers a counter or returns the one already registered
// under the same name.
func GetCounterVec(name, help string, labels ...string) (*prometheus.CounterVec, error) {
	metrics := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labels)
	if err := prometheus.Register(metrics); err != nil {
		var registeredErr prometheus.AlreadyRegisteredError
		if ok := errors.As(err, &registeredErr); ok {
			metrics, ok := registeredErr.ExistingCollector.(*prometheus.CounterVec)
			if ok {
				return metrics, nil
			}
		}
		return nil, err
	}
	return metrics, nil
}

// MustCounterVec is GetCounterVec for package-level metrics.
func MustCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	metrics, err := GetCounterVec(name, help, labels...)
	if err != nil {
		panic(err)
	}
	return metrics
}
