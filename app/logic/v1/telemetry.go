package v1

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/companion-ai/relay/app/core"
	"github.com/companion-ai/relay/pkg/errors"
	"github.com/companion-ai/relay/pkg/i18n"
	"github.com/companion-ai/relay/pkg/telemetry"
)

type TelemetryLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewTelemetryLogic(ctx context.Context, core *core.Core) *TelemetryLogic {
	return &TelemetryLogic{
		ctx:  ctx,
		core: core,
	}
}

func (l *TelemetryLogic) Current() telemetry.Snapshot {
	return l.core.Telemetry().CurrentSnapshot()
}

var historicalSeries = []string{"latency", "tokens", "errors", "requests", "cache"}

type HistoricalArgs struct {
	Type        string `form:"type"`
	Start       string `form:"start"`
	End         string `form:"end"`
	Aggregation string `form:"aggregation"`
}

type HistoricalReply struct {
	Type        string                `json:"type"`
	Aggregation string                `json:"aggregation"`
	DataPoints  []telemetry.DataPoint `json:"dataPoints"`
}

func (l *TelemetryLogic) Historical(args HistoricalArgs) (*HistoricalReply, error) {
	if !lo.Contains(historicalSeries, args.Type) {
		return nil, errors.New("TelemetryLogic.Historical.type", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	aggregation := args.Aggregation
	if aggregation == "" {
		aggregation = "hourly"
	}
	if aggregation != "hourly" && aggregation != "daily" {
		return nil, errors.New("TelemetryLogic.Historical.aggregation", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	now := time.Now()
	start := now.Add(-24 * time.Hour)
	end := now
	var err error
	if args.Start != "" {
		if start, err = time.Parse(time.RFC3339, args.Start); err != nil {
			return nil, errors.New("TelemetryLogic.Historical.start", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
		}
	}
	if args.End != "" {
		if end, err = time.Parse(time.RFC3339, args.End); err != nil {
			return nil, errors.New("TelemetryLogic.Historical.end", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
		}
	}
	if end.Before(start) {
		return nil, errors.New("TelemetryLogic.Historical.range", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	return &HistoricalReply{
		Type:        args.Type,
		Aggregation: aggregation,
		DataPoints:  l.core.Telemetry().Historical(args.Type, start, end, aggregation),
	}, nil
}

type AlertsReply struct {
	Alerts []telemetry.Alert `json:"alerts"`
	Count  int               `json:"count"`
}

func (l *TelemetryLogic) Alerts(since string) (*AlertsReply, error) {
	var cutoff *time.Time
	if since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return nil, errors.New("TelemetryLogic.Alerts.since", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
		}
		cutoff = &parsed
	}

	alerts := l.core.Alerts().Get(cutoff)
	if alerts == nil {
		alerts = []telemetry.Alert{}
	}
	return &AlertsReply{Alerts: alerts, Count: len(alerts)}, nil
}

type SimulateArgs struct {
	Count int `json:"count"`
}

type SimulateReply struct {
	Generated int `json:"generated"`
}

// Simulate backfills synthetic samples over the past day so the
// dashboard can be exercised without live traffic. Dev tooling only,
// gated behind the admin token.
func (l *TelemetryLogic) Simulate(args SimulateArgs) *SimulateReply {
	count := args.Count
	if count <= 0 {
		count = 100
	}
	if count > 2000 {
		count = 2000
	}

	now := time.Now()
	errorTypes := []string{"", "", "", "", "", "", "", "", "TIMEOUT", "SERVER_ERROR"}
	for i := 0; i < count; i++ {
		cacheHit := rand.Intn(2) == 0
		l.core.Telemetry().Record(telemetry.Sample{
			Timestamp:        now.Add(-time.Duration(rand.Intn(24*60)) * time.Minute),
			LatencyMs:        int64(200 + rand.Intn(4800)),
			HasLatency:       true,
			PromptTokens:     50 + rand.Intn(450),
			CompletionTokens: 20 + rand.Intn(180),
			ErrorType:        errorTypes[rand.Intn(len(errorTypes))],
			CacheHit:         &cacheHit,
		})
	}
	l.core.Alerts().EvaluateAndRecord()

	return &SimulateReply{Generated: count}
}
