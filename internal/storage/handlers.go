package storage

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bookworm-app/bookworm-backend/internal/common/utils"
)

type Handler struct {
	uploads *UploadService
}

func NewHandler(uploads *UploadService) *Handler {
	return &Handler{uploads: uploads}
}

// UploadImage handles POST /api/v1/uploads/{category}. Category is
// restricted to the kinds of images the platform serves.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	if category != "covers" && category != "avatars" {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown upload category")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	url, err := h.uploads.UploadImage(file, header, category)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithData(w, http.StatusCreated, map[string]string{"url": url})
}

// DeleteImage handles DELETE /api/v1/uploads?url=<public url>.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing url parameter")
		return
	}

	if err := h.uploads.DeleteImage(url); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Image not found")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Image deleted")
}

func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	protected := router.PathPrefix("/api/v1").Subrouter()
	protected.Use(authenticate)

	protected.HandleFunc("/uploads/{category}", handler.UploadImage).Methods("POST")
	protected.HandleFunc("/uploads", handler.DeleteImage).Methods("DELETE")
}
