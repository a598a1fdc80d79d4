package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/companion-ai/relay/pkg/metrics"
)

type Metrics struct {
	apiResponseTime      *prometheus.HistogramVec
	apiErrorCounter      *prometheus.CounterVec
	providerResponseTime *prometheus.HistogramVec
	providerError        *prometheus.CounterVec
	promptBuildTime      *prometheus.HistogramVec
	rateLimited          *prometheus.CounterVec
}

func NewMetrics(ns, system string) *Metrics {
	// setup metric
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime:      metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:      metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		providerResponseTime: metrics.NewHistogramVec("provider_response_time", []string{"model"}),
		providerError:        metrics.NewCounterVec("provider_error", []string{"type"}),
		promptBuildTime:      metrics.NewHistogramVec("prompt_build_time", nil),
		rateLimited:          metrics.NewCounterVec("rate_limited", []string{"api"}),
	}

	return m
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ProviderResponseTimer(model string) *prometheus.Timer {
	return prometheus.NewTimer(m.providerResponseTime.WithLabelValues(model))
}

func (m *Metrics) ProviderErrorInc(errType string) {
	m.providerError.WithLabelValues(errType).Inc()
}

func (m *Metrics) PromptBuildTimer() *prometheus.Timer {
	return prometheus.NewTimer(m.promptBuildTime.WithLabelValues())
}

func (m *Metrics) RateLimitedInc(api string) {
	m.rateLimited.WithLabelValues(api).Inc()
}
