package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/notify"

	"github.com/google/uuid"
)

// fakeStore backs every fake repository of one test with shared tables.
type fakeStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*entity.User
	sessions     map[uuid.UUID]*entity.Session
	bookings     map[uuid.UUID]*entity.Booking
	payments     []*entity.Payment
	destinations map[uuid.UUID]*entity.Destination
	hotels       map[uuid.UUID]*entity.Hotel
	cabs         map[uuid.UUID]*entity.Cab

	// beforeWrite runs right before a versioned booking write, after the service read the row.
	beforeWrite    func()
	usedReferences map[string]bool
	// duplicateCreates makes the next n booking inserts fail with a reference clash.
	duplicateCreates int
}

func newFakeRepository() (*repository.Repository, *fakeStore) {
	fs := &fakeStore{
		users:          make(map[uuid.UUID]*entity.User),
		sessions:       make(map[uuid.UUID]*entity.Session),
		bookings:       make(map[uuid.UUID]*entity.Booking),
		destinations:   make(map[uuid.UUID]*entity.Destination),
		hotels:         make(map[uuid.UUID]*entity.Hotel),
		cabs:           make(map[uuid.UUID]*entity.Cab),
		usedReferences: make(map[string]bool),
	}
	return &repository.Repository{
		User:        fakeUsers{fs},
		Session:     fakeSessions{fs},
		Booking:     fakeBookings{fs},
		Payment:     fakePayments{fs},
		Destination: fakeDestinations{fs},
		Hotel:       fakeHotels{fs},
		Cab:         fakeCabs{fs},
	}, fs
}

func (fs *fakeStore) booking(id uuid.UUID) *entity.Booking {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	b, ok := fs.bookings[id]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

func (fs *fakeStore) runBeforeWrite() {
	if fs.beforeWrite != nil {
		hook := fs.beforeWrite
		fs.beforeWrite = nil
		hook()
	}
}

// ==================== USERS & SESSIONS ====================

type fakeUsers struct{ fs *fakeStore }

func (r fakeUsers) Create(_ context.Context, user *entity.User) error {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	for _, u := range r.fs.users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.fs.users[user.ID] = &cp
	return nil
}

func (r fakeUsers) find(match func(*entity.User) bool) *entity.User {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	for _, u := range r.fs.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id }), nil
}

func (r fakeUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r fakeUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username }), nil
}

type fakeSessions struct{ fs *fakeStore }

func (r fakeSessions) Create(_ context.Context, session *entity.Session) error {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	cp := *session
	r.fs.sessions[session.Token] = &cp
	return nil
}

func (r fakeSessions) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, nil
	}
	s, ok := r.fs.sessions[id]
	if !ok || s.RevokedAt != nil {
		return nil, nil
	}
	cp := *s
	if u, ok := r.fs.users[s.UserID]; ok {
		cp.Role = u.Role
	}
	return &cp, nil
}

func (r fakeSessions) Revoke(_ context.Context, token string) error {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	id, _ := uuid.Parse(token)
	s, ok := r.fs.sessions[id]
	if !ok || s.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := s.CreatedAt
	s.RevokedAt = &now
	return nil
}

func (r fakeSessions) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	for _, s := range r.fs.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			now := s.CreatedAt
			s.RevokedAt = &now
		}
	}
	return nil
}

func (r fakeSessions) CleanExpiredSessions(context.Context) error { return nil }

// ==================== BOOKINGS & PAYMENTS ====================

type fakeBookings struct{ fs *fakeStore }

func (r fakeBookings) Create(_ context.Context, booking *entity.Booking) error {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	if r.fs.duplicateCreates > 0 || r.fs.usedReferences[booking.Reference] {
		r.fs.duplicateCreates--
		return repository.ErrDuplicate
	}
	booking.Version = 1
	cp := *booking
	r.fs.bookings[booking.ID] = &cp
	r.fs.usedReferences[booking.Reference] = true
	return nil
}

func (r fakeBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.fs.booking(id), nil
}

func (r fakeBookings) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.fs.bookings {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r fakeBookings) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	var n int64
	for _, b := range r.fs.bookings {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r fakeBookings) UpdateDetails(_ context.Context, booking *entity.Booking) error {
	r.fs.runBeforeWrite()
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	cur, ok := r.fs.bookings[booking.ID]
	if !ok || cur.Status.IsTerminal() {
		return repository.ErrStaleState
	}
	booking.Version = cur.Version + 1
	booking.Status = cur.Status
	booking.PaymentStatus = cur.PaymentStatus
	cp := *booking
	r.fs.bookings[booking.ID] = &cp
	return nil
}

func (r fakeBookings) Transition(_ context.Context, booking *entity.Booking, from []entity.BookingStatus) error {
	r.fs.runBeforeWrite()
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	return r.transitionLocked(booking, from)
}

func (r fakeBookings) transitionLocked(booking *entity.Booking, from []entity.BookingStatus) error {
	cur, ok := r.fs.bookings[booking.ID]
	if !ok {
		return repository.ErrStaleState
	}
	matched := false
	for _, s := range from {
		if cur.Status == s {
			matched = true
		}
	}
	if !matched {
		return repository.ErrStaleState
	}
	booking.Version = cur.Version + 1
	cp := *booking
	r.fs.bookings[booking.ID] = &cp
	return nil
}

func (r fakeBookings) ConfirmPayment(_ context.Context, booking *entity.Booking, payment *entity.Payment) error {
	r.fs.runBeforeWrite()
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	if err := r.transitionLocked(booking, entity.SourcesOf(entity.BookingStatusConfirmed)); err != nil {
		return err
	}
	cp := *payment
	r.fs.payments = append(r.fs.payments, &cp)
	return nil
}

func (r fakeBookings) DeletePending(_ context.Context, id, userID uuid.UUID) (int64, error) {
	r.fs.runBeforeWrite()
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	cur, ok := r.fs.bookings[id]
	if !ok || cur.UserID != userID || cur.Status != entity.BookingStatusPending {
		return 0, repository.ErrStaleState
	}
	delete(r.fs.bookings, id)
	return cur.Version + 1, nil
}

func (r fakeBookings) ForEach(_ context.Context, fn func(*entity.Booking) error) error {
	r.fs.mu.Lock()
	var all []*entity.Booking
	for _, b := range r.fs.bookings {
		cp := *b
		all = append(all, &cp)
	}
	r.fs.mu.Unlock()
	for _, b := range all {
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}

type fakePayments struct{ fs *fakeStore }

func (r fakePayments) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.Payment, error) {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.fs.payments {
		if p.BookingID == bookingID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ==================== CATALOG ====================

type fakeDestinations struct{ fs *fakeStore }

func (r fakeDestinations) Create(_ context.Context, d *entity.Destination) error {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	for _, existing := range r.fs.destinations {
		if existing.Name == d.Name {
			return repository.ErrDuplicate
		}
	}
	cp := *d
	r.fs.destinations[d.ID] = &cp
	return nil
}

func (r fakeDestinations) FindByID(_ context.Context, id uuid.UUID) (*entity.Destination, error) {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	if d, ok := r.fs.destinations[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (r fakeDestinations) FindAll(_ context.Context, search string, limit, offset int) ([]*entity.Destination, error) {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	var out []*entity.Destination
	for _, d := range r.fs.destinations {
		if search == "" || strings.Contains(strings.ToLower(d.Name+" "+d.City+" "+d.Country), strings.ToLower(search)) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r fakeDestinations) CountAll(ctx context.Context, search string) (int64, error) {
	all, _ := r.FindAll(ctx, search, 1<<30, 0)
	return int64(len(all)), nil
}

func (r fakeDestinations) FindPopular(ctx context.Context, search string, limit, offset int) ([]*entity.Destination, error) {
	all, _ := r.FindAll(ctx, search, 1<<30, 0)
	var out []*entity.Destination
	for _, d := range all {
		if d.Rating >= 4 {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return page(out, limit, offset), nil
}

func (r fakeDestinations) CountPopular(ctx context.Context, search string) (int64, error) {
	all, _ := r.FindPopular(ctx, search, 1<<30, 0)
	return int64(len(all)), nil
}

func (r fakeDestinations) Delete(_ context.Context, id uuid.UUID, now time.Time) ([]*entity.Hotel, error) {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	if _, ok := r.fs.destinations[id]; !ok {
		return nil, repository.ErrNotFound
	}
	if r.fs.referenced(id) {
		return nil, repository.ErrInUse
	}

	detached := []*entity.Hotel{}
	for _, h := range r.fs.hotels {
		if h.DestinationID == nil || *h.DestinationID != id {
			continue
		}
		h.DestinationID = nil
		h.UpdatedAt = laterOf(now, h.UpdatedAt.Add(time.Microsecond))
		cp := *h
		detached = append(detached, &cp)
	}
	delete(r.fs.destinations, id)
	return detached, nil
}

func (r fakeDestinations) ForEach(ctx context.Context, fn func(*entity.Destination) error) error {
	all, _ := r.FindAll(ctx, "", 1<<30, 0)
	for _, d := range all {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

type fakeHotels struct{ fs *fakeStore }

func (r fakeHotels) Create(_ context.Context, h *entity.Hotel) error {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	cp := *h
	r.fs.hotels[h.ID] = &cp
	return nil
}

func (r fakeHotels) FindByID(_ context.Context, id uuid.UUID) (*entity.Hotel, error) {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	if h, ok := r.fs.hotels[id]; ok {
		cp := *h
		return &cp, nil
	}
	return nil, nil
}

func (r fakeHotels) FindAll(_ context.Context, search string, limit, offset int) ([]*entity.Hotel, error) {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	var out []*entity.Hotel
	for _, h := range r.fs.hotels {
		if search == "" || strings.Contains(strings.ToLower(h.Name+" "+h.Location), strings.ToLower(search)) {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r fakeHotels) CountAll(ctx context.Context, search string) (int64, error) {
	all, _ := r.FindAll(ctx, search, 1<<30, 0)
	return int64(len(all)), nil
}

func (r fakeHotels) FindAvailable(ctx context.Context, search string, limit, offset int) ([]*entity.Hotel, error) {
	all, _ := r.FindAll(ctx, search, 1<<30, 0)
	var out []*entity.Hotel
	for _, h := range all {
		if h.AvailableRooms > 0 {
			out = append(out, h)
		}
	}
	return page(out, limit, offset), nil
}

func (r fakeHotels) CountAvailable(ctx context.Context, search string) (int64, error) {
	all, _ := r.FindAvailable(ctx, search, 1<<30, 0)
	return int64(len(all)), nil
}

func (r fakeHotels) Delete(_ context.Context, id uuid.UUID) error {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	if _, ok := r.fs.hotels[id]; !ok {
		return repository.ErrNotFound
	}
	if r.fs.referenced(id) {
		return repository.ErrInUse
	}
	delete(r.fs.hotels, id)
	return nil
}

func (r fakeHotels) ForEach(ctx context.Context, fn func(*entity.Hotel) error) error {
	all, _ := r.FindAll(ctx, "", 1<<30, 0)
	for _, h := range all {
		if err := fn(h); err != nil {
			return err
		}
	}
	return nil
}

type fakeCabs struct{ fs *fakeStore }

func (r fakeCabs) Create(_ context.Context, c *entity.Cab) error {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	cp := *c
	r.fs.cabs[c.ID] = &cp
	return nil
}

func (r fakeCabs) FindByID(_ context.Context, id uuid.UUID) (*entity.Cab, error) {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	if c, ok := r.fs.cabs[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r fakeCabs) FindAll(_ context.Context, search string, limit, offset int) ([]*entity.Cab, error) {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	var out []*entity.Cab
	for _, c := range r.fs.cabs {
		if search == "" || strings.Contains(strings.ToLower(c.CompanyName), strings.ToLower(search)) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyName < out[j].CompanyName })
	return page(out, limit, offset), nil
}

func (r fakeCabs) CountAll(ctx context.Context, search string) (int64, error) {
	all, _ := r.FindAll(ctx, search, 1<<30, 0)
	return int64(len(all)), nil
}

func (r fakeCabs) Delete(_ context.Context, id uuid.UUID) error {
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	if _, ok := r.fs.cabs[id]; !ok {
		return repository.ErrNotFound
	}
	if r.fs.referenced(id) {
		return repository.ErrInUse
	}
	delete(r.fs.cabs, id)
	return nil
}

func (r fakeCabs) ForEach(ctx context.Context, fn func(*entity.Cab) error) error {
	all, _ := r.FindAll(ctx, "", 1<<30, 0)
	for _, c := range all {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

// referenced reports whether a booking targets id. Callers hold fs.mu.
func (fs *fakeStore) referenced(id uuid.UUID) bool {
	for _, b := range fs.bookings {
		if b.Target.ID == id {
			return true
		}
	}
	return false
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ==================== SIDE EFFECTS ====================

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event notify.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
