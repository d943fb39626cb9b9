package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketAvailable TicketStatus = "Available"
	TicketBooked    TicketStatus = "Booked"
	TicketCancelled TicketStatus = "Cancelled"
)

type Ticket struct {
	gorm.Model
	ID         uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	MovieTitle string       `gorm:"not null" json:"movie_title"`
	Cinema     string       `gorm:"not null;uniqueIndex:idx_cinema_showtime_seat" json:"cinema"`
	ShowTime   time.Time    `gorm:"not null;uniqueIndex:idx_cinema_showtime_seat" json:"show_time"`
	SeatNumber string       `gorm:"not null;uniqueIndex:idx_cinema_showtime_seat" json:"seat_number"`
	Price      float64      `gorm:"not null" json:"price"`
	Status     TicketStatus `gorm:"type:varchar(16);not null;default:'Available';index" json:"status"`
	BookedBy   *uuid.UUID   `gorm:"type:uuid;index" json:"booked_by,omitempty"`
	BookedAt   *time.Time   `json:"booked_at,omitempty"`
	Booker     *User        `gorm:"foreignKey:BookedBy" json:"-"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}
