package telemetry

import (
	"sync"
	"time"
)

const maxAlerts = 200

type Thresholds struct {
	LatencyP95Ms int64
	ErrorRatePct int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		LatencyP95Ms: 5000,
		ErrorRatePct: 10,
	}
}

type Alert struct {
	AlertID     string    `json:"alertId"`
	ActualValue int64     `json:"actualValue"`
	Threshold   int64     `json:"threshold"`
	TriggeredAt time.Time `json:"triggeredAt"`
}

// Alerts evaluates snapshot thresholds and keeps a capped list of
// breaches for the dashboard.
type Alerts struct {
	mu          sync.Mutex
	aggregation *Aggregation
	thresholds  Thresholds
	alerts      []Alert
}

func NewAlerts(aggregation *Aggregation, thresholds Thresholds) *Alerts {
	return &Alerts{
		aggregation: aggregation,
		thresholds:  thresholds,
	}
}

func (a *Alerts) EvaluateAndRecord() {
	snapshot := a.aggregation.CurrentSnapshot()
	now := time.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	if snapshot.Latency.P95 > a.thresholds.LatencyP95Ms {
		a.push(Alert{
			AlertID:     "latency-high",
			ActualValue: snapshot.Latency.P95,
			Threshold:   a.thresholds.LatencyP95Ms,
			TriggeredAt: now,
		})
	}

	totalReq := snapshot.RequestRate.PerHour
	if totalReq > 0 {
		errorPct := int64(float64(snapshot.ErrorRate.Total) / float64(totalReq) * 100)
		if errorPct > int64(a.thresholds.ErrorRatePct) {
			a.push(Alert{
				AlertID:     "error-rate-high",
				ActualValue: errorPct,
				Threshold:   int64(a.thresholds.ErrorRatePct),
				TriggeredAt: now,
			})
		}
	}
}

func (a *Alerts) push(alert Alert) {
	a.alerts = append(a.alerts, alert)
	if overflow := len(a.alerts) - maxAlerts; overflow > 0 {
		a.alerts = append(a.alerts[:0:0], a.alerts[overflow:]...)
	}
}

func (a *Alerts) Get(since *time.Time) []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()

	if since == nil {
		return append([]Alert(nil), a.alerts...)
	}

	var filtered []Alert
	for _, alert := range a.alerts {
		if alert.TriggeredAt.After(*since) {
			filtered = append(filtered, alert)
		}
	}
	return filtered
}
