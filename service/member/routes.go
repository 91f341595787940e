package member

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pawfeed/pawfeed-server/cmd/models"
	"github.com/pawfeed/pawfeed-server/cmd/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/register", h.HandleRegister).Methods("POST")
	router.HandleFunc("/login", h.HandleLogin).Methods("POST")
	router.HandleFunc("/refresh", h.HandleRefreshToken).Methods("POST")

	// Block routes
	router.HandleFunc("/members/{id}/block", utils.AuthMiddleware(h.BlockMember)).Methods("POST")
	router.HandleFunc("/members/{id}/block", utils.AuthMiddleware(h.UnblockMember)).Methods("DELETE")
	router.HandleFunc("/blocks", utils.AuthMiddleware(h.ListBlocks)).Methods("GET")
}

// HandleRegister creates a new member account
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Nickname == "" {
		utils.WriteError(w, http.StatusBadRequest, "Email, password and nickname are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	member := models.Member{
		Email:        req.Email,
		PasswordHash: string(hash),
		Nickname:     req.Nickname,
	}
	if err := h.db.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.WriteError(w, http.StatusConflict, "Email already registered")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Error creating member")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, member)
}

// HandleLogin verifies credentials and issues access and refresh tokens
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var member models.Member
	if err := h.db.Where("email = ?", req.Email).First(&member).Error; err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)); err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	accessToken, err := generateAccessToken(member.ID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	refreshToken := models.RefreshToken{
		MemberID:  member.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := h.db.Create(&refreshToken).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error creating refresh token")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken.Token,
		"member":        member,
	})
}

// HandleRefreshToken rotates a refresh token and issues a new access token
func (h *Handler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var stored models.RefreshToken
	if err := h.db.Where("token = ?", req.RefreshToken).First(&stored).Error; err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	if time.Now().After(stored.ExpiresAt) {
		h.db.Delete(&stored)
		utils.WriteError(w, http.StatusUnauthorized, "Refresh token expired")
		return
	}

	accessToken, err := generateAccessToken(stored.MemberID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	// Rotate: the old token dies with this exchange.
	stored.Token = uuid.New().String()
	stored.ExpiresAt = time.Now().Add(refreshTokenTTL)
	if err := h.db.Save(&stored).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error rotating refresh token")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"access_token":  accessToken,
		"refresh_token": stored.Token,
	})
}

// BlockMember adds a member to the caller's blocklist
func (h *Handler) BlockMember(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetActorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	blockedID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}
	if uint(blockedID) == actorID {
		utils.WriteError(w, http.StatusBadRequest, "Cannot block yourself")
		return
	}

	var target models.Member
	if err := h.db.First(&target, blockedID).Error; err != nil {
		utils.WriteError(w, http.StatusNotFound, "Member not found")
		return
	}

	block := models.Block{BlockerID: actorID, BlockedID: uint(blockedID)}
	if err := h.db.Create(&block).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.WriteError(w, http.StatusConflict, "Member already blocked")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Error blocking member")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, block)
}

// UnblockMember removes a member from the caller's blocklist
func (h *Handler) UnblockMember(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetActorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	blockedID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	result := h.db.Where("blocker_id = ? AND blocked_id = ?", actorID, blockedID).Delete(&models.Block{})
	if result.Error != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error unblocking member")
		return
	}
	if result.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, "Member was not blocked")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Member unblocked successfully"})
}

// ListBlocks returns the caller's blocklist
func (h *Handler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetActorID(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var blocks []models.Block
	if err := h.db.Where("blocker_id = ?", actorID).Find(&blocks).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error retrieving blocks")
		return
	}

	utils.WriteJSON(w, http.StatusOK, blocks)
}

func generateAccessToken(memberID uint) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(memberID), 10),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("SECRET_KEY")))
}
