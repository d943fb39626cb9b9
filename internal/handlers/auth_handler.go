package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/althafr/cinetick/internal/helpers"
	"github.com/althafr/cinetick/internal/middleware"
	"github.com/althafr/cinetick/internal/models"
	"github.com/althafr/cinetick/internal/stores"
)

type AuthHandler struct {
	users stores.UserStore
}

func NewAuthHandler(users stores.UserStore) *AuthHandler {
	return &AuthHandler{users: users}
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	role := models.RoleUser
	if req.Role != "" {
		role = models.Role(req.Role)
		if !role.Valid() {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid role.")
			return
		}
	}

	existing, err := h.users.FindByEmail(req.Email)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error creating user.")
		return
	}
	if existing != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "User already exists with this email")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to hash the password.")
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Phone:    req.Phone,
		Role:     role,
		IsVIP:    false,
		IsActive: true,
	}

	if err := h.users.Insert(&user); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	token, err := helpers.GenerateToken(&user)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
		return
	}
	setTokenCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user": gin.H{
			"id":     user.ID,
			"name":   user.Name,
			"email":  user.Email,
			"role":   user.Role,
			"is_vip": user.IsVIP,
		},
		"token": token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.FindByEmail(req.Email)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error during login.")
		return
	}
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.IsActive {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.users.UpdateLastLogin(user.ID, time.Now()); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error during login.")
		return
	}

	token, err := helpers.GenerateToken(user)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
		return
	}
	setTokenCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":     user.ID,
			"name":   user.Name,
			"email":  user.Email,
			"role":   user.Role,
			"is_vip": user.IsVIP,
		},
		"token": token,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	user, err := h.users.FindByID(userID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error fetching profile.")
		return
	}
	if user == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	ticketIDs, err := h.users.TicketIDs(userID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error fetching profile.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"phone":      user.Phone,
			"role":       user.Role,
			"tickets":    ticketIDs,
			"is_vip":     user.IsVIP,
			"created_at": user.CreatedAt,
		},
	})
}

func setTokenCookie(c *gin.Context, token string) {
	c.SetCookie("token", token, int(helpers.TokenTTL.Seconds()), "/", "", false, true)
}
