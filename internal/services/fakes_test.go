package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/ovenfresh/internal/models"
	"github.com/example/ovenfresh/internal/store"
)

// In-memory collaborators standing in for the data access layer and the
// mailer. Lookups hand out copies so service-side mutations only become
// visible through Save, the way a real store behaves.

type sentMail struct {
	to      string
	subject string
	html    string
	text    string
}

type stubMailer struct {
	result bool
	sent   []sentMail
}

func (m *stubMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) bool {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: htmlBody, text: textBody})
	return m.result
}

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	clone := *u
	if u.VerificationCode != nil {
		code := *u.VerificationCode
		clone.VerificationCode = &code
	}
	if u.VerificationExpiry != nil {
		expiry := *u.VerificationExpiry
		clone.VerificationExpiry = &expiry
	}
	if u.ResetTokenHash != nil {
		hash := *u.ResetTokenHash
		clone.ResetTokenHash = &hash
	}
	if u.ResetTokenExpiry != nil {
		expiry := *u.ResetTokenExpiry
		clone.ResetTokenExpiry = &expiry
	}
	return &clone
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	for _, u := range f.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == hash {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) Save(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	f.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

// stored returns the persisted state of a user, bypassing clone semantics.
func (f *fakeUserStore) stored(id uuid.UUID) *models.User {
	return f.users[id]
}

type fakeOrderStore struct {
	orders map[uuid.UUID]*models.Order

	// conflictsRemaining makes the next N guarded saves fail as if another
	// writer bumped the version in between.
	conflictsRemaining int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uuid.UUID]*models.Order)}
}

func cloneOrder(o *models.Order) *models.Order {
	clone := *o
	clone.StatusHistory = append(models.StatusHistory(nil), o.StatusHistory...)
	clone.Items = append([]models.OrderItem(nil), o.Items...)
	if o.UserID != nil {
		id := *o.UserID
		clone.UserID = &id
	}
	if o.EstimatedDelivery != nil {
		est := *o.EstimatedDelivery
		clone.EstimatedDelivery = &est
	}
	return &clone
}

func (f *fakeOrderStore) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID] = cloneOrder(order)
	return nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := f.orders[id]; ok {
		return cloneOrder(o), nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeOrderStore) ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID != nil && *o.UserID == userID && (status == "" || o.Status == status) {
			out = append(out, *cloneOrder(o))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderStore) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, *cloneOrder(o))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderStore) SaveGuarded(ctx context.Context, order *models.Order, expected int64) error {
	stored, ok := f.orders[order.ID]
	if !ok {
		return store.ErrNotFound
	}

	if f.conflictsRemaining > 0 {
		f.conflictsRemaining--
		stored.Version++
		return store.ErrVersionConflict
	}
	if stored.Version != expected {
		return store.ErrVersionConflict
	}

	stored.Status = order.Status
	stored.StatusHistory = append(models.StatusHistory(nil), order.StatusHistory...)
	stored.TrackingNumber = order.TrackingNumber
	stored.EstimatedDelivery = order.EstimatedDelivery
	stored.Notes = order.Notes
	stored.Address = order.Address
	stored.Phone = order.Phone
	stored.Version = expected + 1
	stored.UpdatedAt = time.Now()
	order.Version = expected + 1
	return nil
}

// SaveGuardedWithItems mirrors the real store: on any failed guard nothing
// commits, items included.
func (f *fakeOrderStore) SaveGuardedWithItems(ctx context.Context, order *models.Order, expected int64, items []models.OrderItem) error {
	if err := f.SaveGuarded(ctx, order, expected); err != nil {
		return err
	}
	if items == nil {
		return nil
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	f.orders[order.ID].Items = append([]models.OrderItem(nil), items...)
	return nil
}

// stored returns the persisted state of an order, bypassing clone semantics.
func (f *fakeOrderStore) stored(id uuid.UUID) *models.Order {
	return f.orders[id]
}
