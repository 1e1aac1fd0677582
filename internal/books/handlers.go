package books

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bookworm-app/bookworm-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	params := &SearchParams{
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Offset:    offset,
		Limit:     limit,
	}

	if params.SortBy != "" {
		if _, ok := sortColumns[params.SortBy]; !ok {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid sortBy value")
			return
		}
	}

	result, err := h.service.ListBooks(r.Context(), params)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list books")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Book not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get book")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, book)
}

func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var dto CreateBookDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.service.CreateBook(r.Context(), &dto)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create book")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, book)
}

func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var dto UpdateBookDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.service.UpdateBook(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Book not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update book")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, book)
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	if err := h.service.DeleteBook(r.Context(), id); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Book not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete book")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Book deleted successfully")
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
