package routes

import (
	"saathi_server/controllers"
	"saathi_server/services"

	"github.com/gorilla/mux"
)

// RegisterShortlistRoutes sets up routes for the bookmark set under /api/shortlist
func RegisterShortlistRoutes(r *mux.Router, shortlistService *services.ShortlistService) {
	controller := controllers.NewShortlistController(shortlistService)

	shortlistRouter := r.PathPrefix("/api/shortlist").Subrouter()
	shortlistRouter.HandleFunc("", controller.HandleList).Methods("GET")
	shortlistRouter.HandleFunc("/toggle", controller.HandleToggle).Methods("POST")
	shortlistRouter.HandleFunc("/reverse-count", controller.HandleReverseCount).Methods("GET")
}
