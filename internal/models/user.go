package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Email     string     `gorm:"unique;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Phone     string     `gorm:"not null" json:"phone"`
	Role      Role       `gorm:"type:varchar(16);not null;default:'User'" json:"role"`
	IsVIP     bool       `gorm:"not null;default:false" json:"is_vip"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return
}

// UserTicket is one membership row in a user's booked-ticket set. The
// composite primary key makes duplicate adds impossible at the schema level.
type UserTicket struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TicketID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"ticket_id"`
	CreatedAt time.Time `json:"created_at"`
}
