package booking

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/althafr/cinetick/internal/models"
)

type fakeTicketStore struct {
	mu                sync.Mutex
	tickets           map[uuid.UUID]*models.Ticket
	failMarkAvailable bool
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{tickets: make(map[uuid.UUID]*models.Ticket)}
}

func (s *fakeTicketStore) FindByID(id uuid.UUID) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, nil
	}
	copied := *ticket
	return &copied, nil
}

func (s *fakeTicketStore) FindAll() ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ticket
	for _, t := range s.tickets {
		out = append(out, *t)
	}
	return out, nil
}

func (s *fakeTicketStore) FindByStatus(status models.TicketStatus) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ticket
	for _, t := range s.tickets {
		if t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeTicketStore) FindByOwner(userID uuid.UUID) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ticket
	for _, t := range s.tickets {
		if t.BookedBy != nil && *t.BookedBy == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeTicketStore) Insert(ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	copied := *ticket
	s.tickets[ticket.ID] = &copied
	return nil
}

func (s *fakeTicketStore) Delete(id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[id]; !ok {
		return false, nil
	}
	delete(s.tickets, id)
	return true, nil
}

func (s *fakeTicketStore) MarkBooked(ticketID, userID uuid.UUID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[ticketID]
	if !ok || ticket.Status != models.TicketAvailable {
		return false, nil
	}
	ticket.Status = models.TicketBooked
	ticket.BookedBy = &userID
	ticket.BookedAt = &at
	return true, nil
}

func (s *fakeTicketStore) MarkAvailable(ticketID, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMarkAvailable {
		return false, errors.New("store unavailable")
	}
	ticket, ok := s.tickets[ticketID]
	if !ok || ticket.Status != models.TicketBooked || ticket.BookedBy == nil || *ticket.BookedBy != userID {
		return false, nil
	}
	ticket.Status = models.TicketAvailable
	ticket.BookedBy = nil
	ticket.BookedAt = nil
	return true, nil
}

type fakeUserStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*models.User
	sets    map[uuid.UUID]map[uuid.UUID]bool
	failAdd bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users: make(map[uuid.UUID]*models.User),
		sets:  make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (s *fakeUserStore) FindByID(id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) FindByEmail(email string) (*models.User, error) { return nil, nil }
func (s *fakeUserStore) FindByName(name string) (*models.User, error)  { return nil, nil }
func (s *fakeUserStore) FindAll() ([]models.User, error)               { return nil, nil }

func (s *fakeUserStore) Insert(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(id uuid.UUID, at time.Time) error { return nil }
func (s *fakeUserStore) SetVIP(id uuid.UUID, vip bool) error             { return nil }

func (s *fakeUserStore) AddTicket(userID, ticketID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAdd {
		return false, nil
	}
	if _, ok := s.users[userID]; !ok {
		return false, nil
	}
	if s.sets[userID] == nil {
		s.sets[userID] = make(map[uuid.UUID]bool)
	}
	s.sets[userID][ticketID] = true
	return true, nil
}

func (s *fakeUserStore) RemoveTicket(userID, ticketID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets[userID], ticketID)
	return nil
}

func (s *fakeUserStore) ClearTickets(userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.sets[userID]))
	s.sets[userID] = nil
	return n, nil
}

func (s *fakeUserStore) TicketIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id := range s.sets[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *fakeUserStore) holds(userID, ticketID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[userID][ticketID]
}

func newTestEnv(t *testing.T) (*Service, *fakeTicketStore, *fakeUserStore) {
	t.Helper()
	tickets := newFakeTicketStore()
	users := newFakeUserStore()
	return NewService(tickets, users), tickets, users
}

func seedTicket(t *testing.T, tickets *fakeTicketStore) uuid.UUID {
	t.Helper()
	ticket := models.Ticket{
		MovieTitle: "Dune: Part Two",
		Cinema:     "Grand Indonesia XXI",
		ShowTime:   time.Now().Add(48 * time.Hour),
		SeatNumber: "F7",
		Price:      55000,
		Status:     models.TicketAvailable,
	}
	if err := tickets.Insert(&ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket.ID
}

func seedUser(t *testing.T, users *fakeUserStore) uuid.UUID {
	t.Helper()
	user := models.User{Name: "anna", Email: "anna@example.com", Role: models.RoleUser, IsActive: true}
	if err := users.Insert(&user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID
}

// checkTicketInvariant verifies status = Booked iff booked_by and booked_at
// are set.
func checkTicketInvariant(t *testing.T, ticket *models.Ticket) {
	t.Helper()
	booked := ticket.Status == models.TicketBooked
	if booked != (ticket.BookedBy != nil) {
		t.Errorf("invariant violated: status=%s but booked_by set=%v", ticket.Status, ticket.BookedBy != nil)
	}
	if booked != (ticket.BookedAt != nil) {
		t.Errorf("invariant violated: status=%s but booked_at set=%v", ticket.Status, ticket.BookedAt != nil)
	}
}

func TestBookAvailableTicket(t *testing.T) {
	svc, tickets, users := newTestEnv(t)
	ticketID := seedTicket(t, tickets)
	userID := seedUser(t, users)

	result, err := svc.Book(ticketID, userID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if !result.Success {
		t.Fatalf("Book failed: %s", result.Message)
	}
	if result.Message != "Ticket booked successfully" {
		t.Errorf("message = %q", result.Message)
	}
	if result.Ticket == nil {
		t.Fatal("success result carries no ticket")
	}

	ticket, _ := tickets.FindByID(ticketID)
	checkTicketInvariant(t, ticket)
	if ticket.Status != models.TicketBooked {
		t.Errorf("status = %s, want Booked", ticket.Status)
	}
	if ticket.BookedBy == nil || *ticket.BookedBy != userID {
		t.Error("booked_by does not point at the booking user")
	}
	if !users.holds(userID, ticketID) {
		t.Error("ticket missing from user's set")
	}
}

func TestBookUnknownTicket(t *testing.T) {
	svc, _, users := newTestEnv(t)
	userID := seedUser(t, users)

	result, err := svc.Book(uuid.New(), userID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if result.Success || result.Message != "Ticket not found" {
		t.Errorf("got %+v, want failure %q", result, "Ticket not found")
	}
}

func TestBookAlreadyBookedTicket(t *testing.T) {
	svc, tickets, users := newTestEnv(t)
	ticketID := seedTicket(t, tickets)
	first := seedUser(t, users)
	second := seedUser(t, users)

	if result, _ := svc.Book(ticketID, first); !result.Success {
		t.Fatalf("first booking failed: %s", result.Message)
	}

	result, err := svc.Book(ticketID, second)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if result.Success || result.Message != "Ticket is not available" {
		t.Errorf("got %+v, want failure %q", result, "Ticket is not available")
	}

	ticket, _ := tickets.FindByID(ticketID)
	if ticket.BookedBy == nil || *ticket.BookedBy != first {
		t.Error("losing booking attempt must not disturb the winner's booking")
	}
}

func TestBookCompensatesWhenUserUpdateFails(t *testing.T) {
	svc, tickets, users := newTestEnv(t)
	ticketID := seedTicket(t, tickets)
	userID := seedUser(t, users)
	users.failAdd = true

	result, err := svc.Book(ticketID, userID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if result.Success || result.Message != "Failed to update user tickets" {
		t.Errorf("got %+v, want failure %q", result, "Failed to update user tickets")
	}

	ticket, _ := tickets.FindByID(ticketID)
	checkTicketInvariant(t, ticket)
	if ticket.Status != models.TicketAvailable {
		t.Errorf("ticket not reverted, status = %s", ticket.Status)
	}
}

func TestBookPropagatesReversalFailure(t *testing.T) {
	svc, tickets, users := newTestEnv(t)
	ticketID := seedTicket(t, tickets)
	userID := seedUser(t, users)
	users.failAdd = true
	tickets.failMarkAvailable = true

	if _, err := svc.Book(ticketID, userID); err == nil {
		t.Fatal("expected error when the compensating reversal fails")
	}
}

func TestCancelOwnTicket(t *testing.T) {
	svc, tickets, users := newTestEnv(t)
	ticketID := seedTicket(t, tickets)
	userID := seedUser(t, users)

	if result, _ := svc.Book(ticketID, userID); !result.Success {
		t.Fatalf("booking failed: %s", result.Message)
	}

	result, err := svc.Cancel(ticketID, userID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !result.Success || result.Message != "Ticket cancelled successfully" {
		t.Errorf("got %+v", result)
	}

	ticket, _ := tickets.FindByID(ticketID)
	checkTicketInvariant(t, ticket)
	if ticket.Status != models.TicketAvailable {
		t.Errorf("status = %s, want Available", ticket.Status)
	}
	if users.holds(userID, ticketID) {
		t.Error("cancelled ticket still in user's set")
	}
}

func TestCancelSomeoneElsesTicket(t *testing.T) {
	svc, tickets, users := newTestEnv(t)
	ticketID := seedTicket(t, tickets)
	owner := seedUser(t, users)
	other := seedUser(t, users)

	if result, _ := svc.Book(ticketID, owner); !result.Success {
		t.Fatalf("booking failed: %s", result.Message)
	}

	result, err := svc.Cancel(ticketID, other)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if result.Success || result.Message != "You can only cancel your own tickets" {
		t.Errorf("got %+v, want failure %q", result, "You can only cancel your own tickets")
	}

	ticket, _ := tickets.FindByID(ticketID)
	if ticket.Status != models.TicketBooked || ticket.BookedBy == nil || *ticket.BookedBy != owner {
		t.Error("foreign cancellation attempt must leave the ticket untouched")
	}
	if !users.holds(owner, ticketID) {
		t.Error("foreign cancellation attempt must leave the owner's set untouched")
	}
}

func TestCancelUnbookedTicket(t *testing.T) {
	svc, tickets, users := newTestEnv(t)
	ticketID := seedTicket(t, tickets)
	userID := seedUser(t, users)

	result, err := svc.Cancel(ticketID, userID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if result.Success || result.Message != "Ticket is not booked" {
		t.Errorf("got %+v, want failure %q", result, "Ticket is not booked")
	}
}

func TestCancelUnknownTicket(t *testing.T) {
	svc, _, users := newTestEnv(t)
	userID := seedUser(t, users)

	result, err := svc.Cancel(uuid.New(), userID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if result.Success || result.Message != "Ticket not found" {
		t.Errorf("got %+v, want failure %q", result, "Ticket not found")
	}
}

func TestRebookAfterCancel(t *testing.T) {
	svc, tickets, users := newTestEnv(t)
	ticketID := seedTicket(t, tickets)
	first := seedUser(t, users)
	second := seedUser(t, users)

	if result, _ := svc.Book(ticketID, first); !result.Success {
		t.Fatalf("booking failed: %s", result.Message)
	}
	if result, _ := svc.Cancel(ticketID, first); !result.Success {
		t.Fatalf("cancellation failed: %s", result.Message)
	}

	result, err := svc.Book(ticketID, second)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if !result.Success {
		t.Fatalf("rebooking failed: %s", result.Message)
	}
	if users.holds(first, ticketID) {
		t.Error("previous owner still holds the ticket")
	}
	if !users.holds(second, ticketID) {
		t.Error("new owner's set missing the ticket")
	}
}

func TestConcurrentBookingSingleWinner(t *testing.T) {
	svc, tickets, users := newTestEnv(t)
	ticketID := seedTicket(t, tickets)

	const attempts = 16
	userIDs := make([]uuid.UUID, attempts)
	for i := range userIDs {
		userIDs[i] = seedUser(t, users)
	}

	results := make([]*Result, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.Book(ticketID, userIDs[i])
			if err != nil {
				t.Errorf("Book: %v", err)
				return
			}
			results[i] = result
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, result := range results {
		if result == nil {
			continue
		}
		if result.Success {
			winners++
			continue
		}
		if result.Message != "Ticket is not available" {
			t.Errorf("loser %d got message %q", i, result.Message)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	ticket, _ := tickets.FindByID(ticketID)
	checkTicketInvariant(t, ticket)
	holders := 0
	for _, userID := range userIDs {
		if users.holds(userID, ticketID) {
			holders++
		}
	}
	if holders != 1 {
		t.Errorf("ticket present in %d user sets, want 1", holders)
	}
}
