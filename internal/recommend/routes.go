package recommend

import (
	"net/http"

	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	protected := router.PathPrefix("/api/v1").Subrouter()
	protected.Use(authenticate)

	protected.HandleFunc("/recommendations", handler.GetRecommendations).Methods("POST")
}
