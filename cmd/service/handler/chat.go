package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/companion-ai/relay/app/logic/v1"
	"github.com/companion-ai/relay/app/response"
	"github.com/companion-ai/relay/pkg/utils"
)

func (s *HttpSrv) Echo(c *gin.Context) {
	var req v1.EchoArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	reply, err := v1.NewChatLogic(c, s.Core).Echo(req)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, reply)
}

func (s *HttpSrv) SendMessage(c *gin.Context) {
	var req v1.ChatArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	timer := s.Core.Metrics().ApiResponseTimer("chat.message")
	defer timer.ObserveDuration()

	reply, err := v1.NewChatLogic(c, s.Core).SendMessage(req)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, reply)
}
