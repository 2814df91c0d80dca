package controllers

import (
	"github.com/ferbator/shortlink/internal/config"
	"github.com/ferbator/shortlink/internal/controllers/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouterParams struct {
	LinkService ShortLinkService
	AppConf     config.Config
	Logger      *logrus.Logger
}

func SetupRouter(params RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware(params.Logger))
	r.Use(middlewares.GzipMiddleware())

	shortLinkController := NewShortLinkController(params.LinkService, params.AppConf.BaseURL)

	api := r.Group("/api")
	api.POST("/create", shortLinkController.CreateShortLink)
	api.GET("/:shortCode", shortLinkController.Redirect)
	api.DELETE("/delete/:shortCode", shortLinkController.DeleteLink)
	api.PUT("/editLimit/:shortCode", shortLinkController.EditClickLimit)
	return r
}
