// Package booking orchestrates the ticket/user state transition for booking
// and cancellation. It is the only writer of a ticket's status, booked_by and
// booked_at fields and of the user-side ticket set; everything else treats
// those as read-only.
package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/althafr/cinetick/internal/models"
	"github.com/althafr/cinetick/internal/stores"
)

// Result is a typed outcome for a booking or cancellation attempt. A false
// Success is a state conflict the caller can act on, never a server fault;
// storage failures surface as ordinary errors instead.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Ticket  *models.Ticket `json:"ticket,omitempty"`
}

type Service struct {
	tickets stores.TicketStore
	users   stores.UserStore
	now     func() time.Time
}

func NewService(tickets stores.TicketStore, users stores.UserStore) *Service {
	return &Service{
		tickets: tickets,
		users:   users,
		now:     time.Now,
	}
}

// Book moves an Available ticket to Booked and records the ticket in the
// user's set. The status transition is a conditional update, so concurrent
// bookings of the same ticket resolve to exactly one winner. If the user-side
// update fails the ticket write is reverted before returning, keeping the two
// representations consistent.
func (s *Service) Book(ticketID, userID uuid.UUID) (*Result, error) {
	ticket, err := s.tickets.FindByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return &Result{Success: false, Message: "Ticket not found"}, nil
	}
	if ticket.Status != models.TicketAvailable {
		return &Result{Success: false, Message: "Ticket is not available"}, nil
	}

	booked, err := s.tickets.MarkBooked(ticketID, userID, s.now())
	if err != nil {
		return nil, err
	}
	if !booked {
		// Lost the race: someone else claimed the ticket between the read
		// and the conditional write.
		return &Result{Success: false, Message: "Ticket is not available"}, nil
	}

	added, err := s.users.AddTicket(userID, ticketID)
	if err != nil || !added {
		if _, revertErr := s.tickets.MarkAvailable(ticketID, userID); revertErr != nil {
			// The reversal itself failed: the ticket stays Booked with no
			// owning set entry. Reads resolve this by treating the ticket
			// as authoritative.
			return nil, revertErr
		}
		if err != nil {
			return nil, err
		}
		return &Result{Success: false, Message: "Failed to update user tickets"}, nil
	}

	updated, err := s.tickets.FindByID(ticketID)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: "Ticket booked successfully", Ticket: updated}, nil
}

// Cancel releases a Booked ticket back to Available and drops it from the
// user's set. Ownership is checked here regardless of role; staff exemptions
// belong to the middleware layer, not the workflow.
func (s *Service) Cancel(ticketID, userID uuid.UUID) (*Result, error) {
	ticket, err := s.tickets.FindByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return &Result{Success: false, Message: "Ticket not found"}, nil
	}
	if ticket.Status != models.TicketBooked {
		return &Result{Success: false, Message: "Ticket is not booked"}, nil
	}
	if ticket.BookedBy == nil || *ticket.BookedBy != userID {
		return &Result{Success: false, Message: "You can only cancel your own tickets"}, nil
	}

	released, err := s.tickets.MarkAvailable(ticketID, userID)
	if err != nil {
		return nil, err
	}
	if !released {
		return &Result{Success: false, Message: "Ticket is not booked"}, nil
	}

	if err := s.users.RemoveTicket(userID, ticketID); err != nil {
		return nil, err
	}

	return &Result{Success: true, Message: "Ticket cancelled successfully"}, nil
}
