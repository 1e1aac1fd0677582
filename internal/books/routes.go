package books

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes wires the catalog endpoints. Reads are public; writes
// require authentication.
func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	public := router.PathPrefix("/api/v1/books").Subrouter()
	public.HandleFunc("", handler.ListBooks).Methods("GET")
	public.HandleFunc("/{id}", handler.GetBook).Methods("GET")

	protected := router.PathPrefix("/api/v1/books").Subrouter()
	protected.Use(authenticate)
	protected.HandleFunc("", handler.CreateBook).Methods("POST")
	protected.HandleFunc("/{id}", handler.UpdateBook).Methods("PUT")
	protected.HandleFunc("/{id}", handler.DeleteBook).Methods("DELETE")
}
