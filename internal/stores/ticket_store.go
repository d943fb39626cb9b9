package stores

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/althafr/cinetick/internal/models"
)

// TicketStore is the persistence boundary for tickets. FindByID returns
// (nil, nil) when no ticket matches; errors are reserved for storage
// failures.
type TicketStore interface {
	FindByID(id uuid.UUID) (*models.Ticket, error)
	FindAll() ([]models.Ticket, error)
	FindByStatus(status models.TicketStatus) ([]models.Ticket, error)
	FindByOwner(userID uuid.UUID) ([]models.Ticket, error)
	Insert(ticket *models.Ticket) error
	Delete(id uuid.UUID) (bool, error)

	// MarkBooked transitions the ticket to Booked only if its status is
	// still Available, and reports whether a row was claimed. Two callers
	// racing on the same ticket can never both get true.
	MarkBooked(ticketID, userID uuid.UUID, at time.Time) (bool, error)

	// MarkAvailable reverses a booking held by userID: status back to
	// Available, booked_by and booked_at cleared. Conditional on the ticket
	// still being Booked by that user.
	MarkAvailable(ticketID, userID uuid.UUID) (bool, error)
}

type gormTicketStore struct {
	db *gorm.DB
}

func NewTicketStore(db *gorm.DB) TicketStore {
	return &gormTicketStore{db: db}
}

func (s *gormTicketStore) FindByID(id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.Where("id = ?", id).First(&ticket).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *gormTicketStore) FindAll() ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := s.db.Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *gormTicketStore) FindByStatus(status models.TicketStatus) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := s.db.Where("status = ?", status).Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *gormTicketStore) FindByOwner(userID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := s.db.Where("booked_by = ?", userID).Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *gormTicketStore) Insert(ticket *models.Ticket) error {
	return s.db.Create(ticket).Error
}

func (s *gormTicketStore) Delete(id uuid.UUID) (bool, error) {
	result := s.db.Where("id = ?", id).Delete(&models.Ticket{})
	return result.RowsAffected > 0, result.Error
}

func (s *gormTicketStore) MarkBooked(ticketID, userID uuid.UUID, at time.Time) (bool, error) {
	result := s.db.Model(&models.Ticket{}).
		Where("id = ? AND status = ?", ticketID, models.TicketAvailable).
		Updates(map[string]interface{}{
			"status":    models.TicketBooked,
			"booked_by": userID,
			"booked_at": at,
		})
	return result.RowsAffected > 0, result.Error
}

func (s *gormTicketStore) MarkAvailable(ticketID, userID uuid.UUID) (bool, error) {
	result := s.db.Model(&models.Ticket{}).
		Where("id = ? AND status = ? AND booked_by = ?", ticketID, models.TicketBooked, userID).
		Updates(map[string]interface{}{
			"status":    models.TicketAvailable,
			"booked_by": nil,
			"booked_at": nil,
		})
	return result.RowsAffected > 0, result.Error
}
