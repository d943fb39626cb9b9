package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/althafr/cinetick/internal/booking"
	"github.com/althafr/cinetick/internal/helpers"
	"github.com/althafr/cinetick/internal/middleware"
	"github.com/althafr/cinetick/internal/models"
	"github.com/althafr/cinetick/internal/stores"
)

type TicketHandler struct {
	tickets stores.TicketStore
	booking *booking.Service
}

func NewTicketHandler(tickets stores.TicketStore, booking *booking.Service) *TicketHandler {
	return &TicketHandler{tickets: tickets, booking: booking}
}

type CreateTicketRequest struct {
	MovieTitle string    `json:"movie_title" binding:"required"`
	Cinema     string    `json:"cinema" binding:"required"`
	ShowTime   time.Time `json:"show_time" binding:"required"`
	SeatNumber string    `json:"seat_number" binding:"required"`
	Price      float64   `json:"price" binding:"required"`
}

type BookTicketRequest struct {
	TicketID uuid.UUID `json:"ticket_id" binding:"required"`
}

func (h *TicketHandler) ListTickets(c *gin.Context) {
	tickets, err := h.tickets.FindAll()
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tickets.")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	ticket := models.Ticket{
		MovieTitle: req.MovieTitle,
		Cinema:     req.Cinema,
		ShowTime:   req.ShowTime,
		SeatNumber: req.SeatNumber,
		Price:      req.Price,
		Status:     models.TicketAvailable,
	}

	if err := h.tickets.Insert(&ticket); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			helpers.RespondWithError(c, http.StatusConflict, "A ticket for this seat and showing already exists.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error creating ticket.")
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) AvailableTickets(c *gin.Context) {
	tickets, err := h.tickets.FindByStatus(models.TicketAvailable)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving available tickets.")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) UserTickets(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	tickets, err := h.tickets.FindByOwner(userID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user tickets.")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) BookTicket(c *gin.Context) {
	var req BookTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	result, err := h.booking.Book(req.TicketID, userID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error booking ticket.")
		return
	}
	if !result.Success {
		helpers.RespondWithError(c, http.StatusBadRequest, result.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": result.Message,
		"ticket":  result.Ticket,
	})
}

func (h *TicketHandler) CancelTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	result, err := h.booking.Cancel(ticketID, userID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error cancelling ticket.")
		return
	}
	if !result.Success {
		helpers.RespondWithError(c, http.StatusBadRequest, result.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": result.Message})
}

func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	deleted, err := h.tickets.Delete(ticketID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error deleting ticket.")
		return
	}
	if !deleted {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted successfully"})
}

func generateTicketQRData(ticket *models.Ticket) string {
	signature := generateTicketSignature(ticket.ID, *ticket.BookedBy, os.Getenv("JWT_SECRET"))
	return fmt.Sprintf("ticket:%s;user:%s;signature:%s",
		ticket.ID.String(),
		ticket.BookedBy.String(),
		signature,
	)
}

func generateTicketSignature(ticketID, userID uuid.UUID, secretKey string) string {
	data := fmt.Sprintf("%s:%s", ticketID.String(), userID.String())
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func parseTicketQRData(qrData string) (ticketID, userID uuid.UUID, err error) {
	parts := strings.Split(qrData, ";")
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "ticket:") ||
		!strings.HasPrefix(parts[1], "user:") || !strings.HasPrefix(parts[2], "signature:") {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid QR data format")
	}

	ticketID, err = uuid.Parse(strings.TrimPrefix(parts[0], "ticket:"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err = uuid.Parse(strings.TrimPrefix(parts[1], "user:"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return ticketID, userID, nil
}

func validateTicketQRSignature(ticket *models.Ticket, qrData string) bool {
	parts := strings.Split(qrData, ";")
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "signature:") {
		return false
	}
	if ticket.BookedBy == nil {
		return false
	}

	signature := strings.TrimPrefix(parts[2], "signature:")
	expected := generateTicketSignature(ticket.ID, *ticket.BookedBy, os.Getenv("JWT_SECRET"))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (h *TicketHandler) GenerateTicketQR(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	ticket, err := h.tickets.FindByID(ticketID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}
	if ticket == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found")
		return
	}

	if ticket.Status != models.TicketBooked || ticket.BookedBy == nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Ticket is not booked")
		return
	}
	if *ticket.BookedBy != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to generate a QR code for this ticket.")
		return
	}

	qrImage, err := qrcode.Encode(generateTicketQRData(ticket), qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

func (h *TicketHandler) ValidateTicket(c *gin.Context) {
	var req struct {
		QRData string `json:"qr_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	ticketID, userID, err := parseTicketQRData(req.QRData)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid QR code format.")
		return
	}

	ticket, err := h.tickets.FindByID(ticketID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}
	if ticket == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found")
		return
	}

	if !validateTicketQRSignature(ticket, req.QRData) {
		helpers.RespondWithError(c, http.StatusForbidden, "Invalid QR code signature.")
		return
	}
	if ticket.Status != models.TicketBooked || ticket.BookedBy == nil || *ticket.BookedBy != userID {
		helpers.RespondWithError(c, http.StatusBadRequest, "Ticket is not booked")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket is valid",
		"ticket": gin.H{
			"movie_title": ticket.MovieTitle,
			"cinema":      ticket.Cinema,
			"show_time":   ticket.ShowTime,
			"seat_number": ticket.SeatNumber,
		},
	})
}
