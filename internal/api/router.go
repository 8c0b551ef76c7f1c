package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-wood-dashboard/docs"
	"go-wood-dashboard/internal/api/handler"
	"go-wood-dashboard/pkg/router"
)

func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.GET("/", h.Dashboard)
	r.GET("/api/v1/health", h.Health)
	r.GET("/api/v1/dataset", h.GetDataset)
	r.GET("/api/v1/pages", h.ListPages)
	r.GET("/api/v1/pages/*", h.GetPage)
	r.GET("/api/v1/charts/*/*", h.GetChart)
	r.POST("/api/v1/exports", h.CreateExport)
	r.GET("/api/v1/exports/*", h.GetExport)
	r.GET("/api/v1/download/*/*", h.DownloadFile)
	r.GET("/api/v1/runs", h.ListRuns)
	r.GET("/api/v1/runs/*/errors", h.GetRunErrors)
	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))
}
