package reviews

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts review and favorites endpoints. Listing a book's
// reviews is public, everything else requires authentication.
func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	router.HandleFunc("/api/v1/books/{bookId}/reviews", handler.ListBookReviews).Methods("GET")

	protected := router.PathPrefix("/api/v1").Subrouter()
	protected.Use(authenticate)

	protected.HandleFunc("/reviews", handler.CreateReview).Methods("POST")
	protected.HandleFunc("/reviews/{id}", handler.UpdateReview).Methods("PUT")
	protected.HandleFunc("/reviews/{id}", handler.DeleteReview).Methods("DELETE")
	protected.HandleFunc("/reviews/{id}/vote", handler.VoteReview).Methods("POST")

	protected.HandleFunc("/favorites", handler.ListFavorites).Methods("GET")
	protected.HandleFunc("/favorites/{bookId}", handler.AddFavorite).Methods("POST")
	protected.HandleFunc("/favorites/{bookId}", handler.RemoveFavorite).Methods("DELETE")
}
