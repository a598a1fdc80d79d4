package service

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/companion-ai/relay/app/core"
	"github.com/companion-ai/relay/app/response"
	"github.com/companion-ai/relay/cmd/service/handler"
	"github.com/companion-ai/relay/cmd/service/middleware"
	"github.com/companion-ai/relay/pkg/errors"
	"github.com/companion-ai/relay/pkg/i18n"
	"github.com/companion-ai/relay/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func GetIPLimitBuilder(appCore *core.Core, operation string) gin.HandlerFunc {
	return middleware.UseLimit(appCore, operation, func(c *gin.Context) string {
		return operation + ":" + c.ClientIP()
	})
}

func setupHttpRouter(s *handler.HttpSrv) {
	chatLimit := GetIPLimitBuilder(s.Core, "chat")
	dashboardLimit := GetIPLimitBuilder(s.Core, "metrics")

	s.Engine.Use(middleware.Recover(), middleware.CorrelationID(), middleware.I18n())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.HTTPSEnforcer(s.Core))

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	s.Engine.NoRoute(func(c *gin.Context) {
		response.APIError(c, errors.New("router.NoRoute", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound))
	})

	apiV1 := s.Engine.Group("/api/v1")
	{
		chat := apiV1.Group("/chat")
		chat.Use(middleware.Authorization(s.Core))
		{
			chat.POST("/echo", s.Echo)
			chat.POST("/message", chatLimit, s.SendMessage)
		}

		dashboard := apiV1.Group("/metrics")
		dashboard.Use(dashboardLimit, middleware.AdminRequired(s.Core))
		{
			dashboard.GET("/current", s.CurrentMetrics)
			dashboard.GET("/historical", s.HistoricalMetrics)
			dashboard.GET("/alerts", s.MetricAlerts)
			dashboard.POST("/simulate", s.SimulateTraffic)
		}
	}
}
