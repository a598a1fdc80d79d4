package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/companion-ai/relay/app/core"
)

type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}
