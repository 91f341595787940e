package community

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pawfeed/pawfeed-server/cmd/utils"
)

type Handler struct {
	service *ContentService
}

func NewHandler(service *ContentService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	// Post routes
	router.HandleFunc("/posts", utils.AuthMiddleware(h.CreatePost)).Methods("POST")
	router.HandleFunc("/posts", utils.OptionalAuth(h.ListFeed)).Methods("GET")
	router.HandleFunc("/posts/{id}", utils.OptionalAuth(h.GetPost)).Methods("GET")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.UpdatePost)).Methods("PATCH")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.DeletePost)).Methods("DELETE")

	// Like routes
	router.HandleFunc("/posts/{id}/like", utils.AuthMiddleware(h.ToggleLike)).Methods("POST")

	// Comment routes
	router.HandleFunc("/posts/{id}/comments", utils.AuthMiddleware(h.AddComment)).Methods("POST")
	router.HandleFunc("/posts/{id}/comments/{commentId}", utils.AuthMiddleware(h.DeleteComment)).Methods("DELETE")
}

// ListFeed serves the infinite-scroll feed as a slice
func (h *Handler) ListFeed(w http.ResponseWriter, r *http.Request) {
	actorID := utils.OptionalActorID(r)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	slice, err := h.service.ListFeed(r.Context(), actorID, PageRequest{Page: page, Size: size})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, slice)
}

// GetPost serves the post detail with its comments
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}
	actorID := utils.OptionalActorID(r)

	detail, err := h.service.GetDetail(r.Context(), actorID, postID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, detail)
}

// CreatePost creates a new post
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetActorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Content string   `json:"content"`
		Images  []string `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.service.CreatePost(r.Context(), actorID, req.Content, req.Images)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, view)
}

// UpdatePost replaces a post's content and images
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetActorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	// Omitted fields mean "no change", so both are pointers.
	var req struct {
		Content *string   `json:"content"`
		Images  *[]string `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.service.UpdatePost(r.Context(), actorID, postID, req.Content, req.Images)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// DeletePost deletes a post and everything attached to it
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetActorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	if err := h.service.DeletePost(r.Context(), actorID, postID); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

// ToggleLike flips the caller's like on a post
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetActorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	result, err := h.service.ToggleLike(r.Context(), actorID, postID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// AddComment adds a comment to a post
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetActorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.service.AddComment(r.Context(), actorID, postID, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, view)
}

// DeleteComment deletes the caller's own comment
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetActorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	if err := h.service.DeleteComment(r.Context(), actorID, postID, commentID); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

func pathID(r *http.Request, key string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[key], 10, 64)
	return uint(id), err
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrCommentNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotPostOwner), errors.Is(err, ErrNotCommentOwner):
		utils.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidContentLength), errors.Is(err, ErrExceededImageCount):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrWriteConflict):
		utils.WriteError(w, http.StatusConflict, err.Error())
	default:
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
