package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/companion-ai/relay/app/logic/v1"
	"github.com/companion-ai/relay/app/response"
	"github.com/companion-ai/relay/pkg/utils"
)

func (s *HttpSrv) CurrentMetrics(c *gin.Context) {
	response.APISuccess(c, v1.NewTelemetryLogic(c, s.Core).Current())
}

func (s *HttpSrv) HistoricalMetrics(c *gin.Context) {
	var req v1.HistoricalArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	reply, err := v1.NewTelemetryLogic(c, s.Core).Historical(req)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, reply)
}

func (s *HttpSrv) MetricAlerts(c *gin.Context) {
	reply, err := v1.NewTelemetryLogic(c, s.Core).Alerts(c.Query("since"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, reply)
}

func (s *HttpSrv) SimulateTraffic(c *gin.Context) {
	var req v1.SimulateArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, v1.NewTelemetryLogic(c, s.Core).Simulate(req))
}
