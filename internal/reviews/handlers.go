package reviews

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bookworm-app/bookworm-backend/internal/auth"
	"github.com/bookworm-app/bookworm-backend/internal/books"
	"github.com/bookworm-app/bookworm-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var dto CreateReviewDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.service.CreateReview(r.Context(), userID, &dto)
	if err != nil {
		switch {
		case errors.Is(err, books.ErrBookNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Book not found")
		case errors.Is(err, ErrAlreadyReviewed):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create review")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, review)
}

func (h *Handler) ListBookReviews(w http.ResponseWriter, r *http.Request) {
	bookID, err := parseVar(r, "bookId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	result, err := h.service.ListBookReviews(r.Context(), bookID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list reviews")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	reviewID, err := parseVar(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var dto UpdateReviewDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.service.UpdateReview(r.Context(), reviewID, userID, &dto)
	if err != nil {
		respondReviewError(w, err, "Failed to update review")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, review)
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	reviewID, err := parseVar(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := h.service.DeleteReview(r.Context(), reviewID, userID); err != nil {
		respondReviewError(w, err, "Failed to delete review")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Review deleted successfully")
}

func (h *Handler) VoteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	reviewID, err := parseVar(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var dto VoteReviewDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.service.VoteReview(r.Context(), reviewID, userID, dto.IsHelpful); err != nil {
		switch {
		case errors.Is(err, ErrReviewNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Review not found")
		case errors.Is(err, ErrAlreadyVoted):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to vote on review")
		}
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Vote recorded")
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookID, err := parseVar(r, "bookId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	if err := h.service.AddFavorite(r.Context(), userID, bookID); err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Book not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add favorite")
		return
	}

	utils.RespondWithMessage(w, http.StatusCreated, "Book added to favorites")
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookID, err := parseVar(r, "bookId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	if err := h.service.RemoveFavorite(r.Context(), userID, bookID); err != nil {
		if errors.Is(err, ErrNotFavorited) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to remove favorite")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Book removed from favorites")
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.service.ListFavorites(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list favorites")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func respondReviewError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrReviewNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Review not found")
	case errors.Is(err, ErrNotReviewOwner):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func parseVar(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
