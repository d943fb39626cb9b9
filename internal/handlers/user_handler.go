package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/althafr/cinetick/internal/helpers"
	"github.com/althafr/cinetick/internal/stores"
)

type UserHandler struct {
	users   stores.UserStore
	tickets stores.TicketStore
}

func NewUserHandler(users stores.UserStore, tickets stores.TicketStore) *UserHandler {
	return &UserHandler{users: users, tickets: tickets}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.FindAll()
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving users.")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user.")
		return
	}
	if user == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUserByName(c *gin.Context) {
	user, err := h.users.FindByName(c.Param("name"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user.")
		return
	}
	if user == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ToggleVIP(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating user.")
		return
	}
	if user == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	if err := h.users.SetVIP(id, !user.IsVIP); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating user.")
		return
	}
	user.IsVIP = !user.IsVIP

	c.JSON(http.StatusOK, gin.H{
		"message": "User VIP status updated",
		"user":    user,
	})
}

func (h *UserHandler) GetUserTickets(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user tickets.")
		return
	}
	if user == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	// The ticket side is authoritative for what a user currently holds.
	tickets, err := h.tickets.FindByOwner(id)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user tickets.")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func (h *UserHandler) ClearUserTickets(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error deleting user tickets.")
		return
	}
	if user == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	removed, err := h.users.ClearTickets(id)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error deleting user tickets.")
		return
	}
	if removed == 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "User has no tickets")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "All tickets for user deleted",
		"deleted_tickets": removed,
	})
}
