package core

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 客户端请求与 token 缓存指标，nil 时所有记录方法为空操作
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokenCacheTotal *prometheus.CounterVec
	tokenFetchTotal *prometheus.CounterVec
}

// NewMetrics 创建并注册指标，reg 为 nil 时使用 prometheus.DefaultRegisterer。
// 重复注册时复用已注册的 collector。
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "feishu",
				Name:      "http_requests_total",
				Help:      "Open API requests by method, path and HTTP status (0 = no response).",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "feishu",
				Name:      "http_request_duration_seconds",
				Help:      "Open API request latency.",
				Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		tokenCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "feishu",
				Name:      "token_cache_requests_total",
				Help:      "Tenant access token cache lookups by result (hit/miss).",
			},
			[]string{"result"},
		),
		tokenFetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "feishu",
				Name:      "token_fetch_total",
				Help:      "Tenant access token fetches by outcome (success/failure).",
			},
			[]string{"outcome"},
		),
	}

	var err error
	if m.requestsTotal, err = register(reg, m.requestsTotal); err != nil {
		return nil, err
	}
	if m.requestDuration, err = register(reg, m.requestDuration); err != nil {
		return nil, err
	}
	if m.tokenCacheTotal, err = register(reg, m.tokenCacheTotal); err != nil {
		return nil, err
	}
	if m.tokenFetchTotal, err = register(reg, m.tokenFetchTotal); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := errors.AsType[prometheus.AlreadyRegisteredError](err); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observeRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *Metrics) observeTokenCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.tokenCacheTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) observeTokenFetch(ok bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.tokenFetchTotal.WithLabelValues(outcome).Inc()
}
