package stores

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/althafr/cinetick/internal/models"
)

// UserStore is the persistence boundary for users and their booked-ticket
// reference set. Find methods return (nil, nil) when no user matches.
type UserStore interface {
	FindByID(id uuid.UUID) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByName(name string) (*models.User, error)
	FindAll() ([]models.User, error)
	Insert(user *models.User) error
	UpdateLastLogin(id uuid.UUID, at time.Time) error
	SetVIP(id uuid.UUID, vip bool) error

	// AddTicket adds ticketID to the user's ticket set. Adding an id that
	// is already present has no effect. Reports false when the user does
	// not exist.
	AddTicket(userID, ticketID uuid.UUID) (bool, error)

	// RemoveTicket removes ticketID from the user's ticket set. Removing an
	// absent id is a no-op.
	RemoveTicket(userID, ticketID uuid.UUID) error

	// ClearTickets empties the user's ticket set and returns how many
	// references were removed.
	ClearTickets(userID uuid.UUID) (int64, error)

	TicketIDs(userID uuid.UUID) ([]uuid.UUID, error)
}

type gormUserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &gormUserStore{db: db}
}

func (s *gormUserStore) FindByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) FindByName(name string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("LOWER(name) = LOWER(?)", name).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) FindAll() ([]models.User, error) {
	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *gormUserStore) Insert(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *gormUserStore) UpdateLastLogin(id uuid.UUID, at time.Time) error {
	return s.db.Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func (s *gormUserStore) SetVIP(id uuid.UUID, vip bool) error {
	return s.db.Model(&models.User{}).Where("id = ?", id).Update("is_vip", vip).Error
}

func (s *gormUserStore) AddTicket(userID, ticketID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}

	entry := models.UserTicket{UserID: userID, TicketID: ticketID}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *gormUserStore) RemoveTicket(userID, ticketID uuid.UUID) error {
	return s.db.Where("user_id = ? AND ticket_id = ?", userID, ticketID).
		Delete(&models.UserTicket{}).Error
}

func (s *gormUserStore) ClearTickets(userID uuid.UUID) (int64, error) {
	result := s.db.Where("user_id = ?", userID).Delete(&models.UserTicket{})
	return result.RowsAffected, result.Error
}

func (s *gormUserStore) TicketIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.Model(&models.UserTicket{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("ticket_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
