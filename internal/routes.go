package internal

import (
	"dailytrack/internal/controllers"
	"dailytrack/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/today", http.HandlerFunc(apiController.GetToday))
	routers.Get("/log", http.HandlerFunc(apiController.GetLog))
	routers.Post("/log/day", http.HandlerFunc(apiController.MergeDay))
	routers.Post("/liquid", http.HandlerFunc(apiController.AddLiquid))

	routers.Get("/fast", http.HandlerFunc(apiController.GetFast))
	routers.Post("/fast/start", http.HandlerFunc(apiController.StartFast))
	routers.Post("/fast/end", http.HandlerFunc(apiController.EndFast))

	routers.Get("/meds", http.HandlerFunc(apiController.GetMeds))
	routers.Post("/meds", http.HandlerFunc(apiController.UpsertMed))
	routers.Post("/meds/delete", http.HandlerFunc(apiController.DeleteMed))
	routers.Post("/meds/toggle", http.HandlerFunc(apiController.ToggleMed))
	routers.Get("/meds/next", http.HandlerFunc(apiController.NextMed))

	routers.Get("/weight", http.HandlerFunc(apiController.GetWeight))
	routers.Post("/weight", http.HandlerFunc(apiController.RecordWeight))
	routers.Post("/sync", http.HandlerFunc(apiController.Sync))
	return routers
}
