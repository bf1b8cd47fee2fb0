package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/ovenfresh/internal/models"
	"github.com/example/ovenfresh/internal/store"
)

// statusUpdateRetries bounds the optimistic read-modify-write loop on
// concurrent order updates before giving up with ErrUpdateConflict.
const statusUpdateRetries = 3

// OrderStore is the slice of the data access layer the order service needs.
// *store.OrderStore satisfies it; tests substitute an in-memory fake.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Order, int64, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]models.Order, int64, error)
	SaveGuarded(ctx context.Context, order *models.Order, expected int64) error
	SaveGuardedWithItems(ctx context.Context, order *models.Order, expected int64, items []models.OrderItem) error
}

// OrderService implements order creation and the status-history lifecycle.
type OrderService struct {
	orders     OrderStore
	mailer     Mailer
	adminEmail string
	now        func() time.Time // injectable clock for testing
}

// NewOrderService constructs an OrderService.
func NewOrderService(orders OrderStore, mailer Mailer, adminEmail string) *OrderService {
	return &OrderService{orders: orders, mailer: mailer, adminEmail: adminEmail, now: time.Now}
}

// OrderItemParams is one requested order line.
type OrderItemParams struct {
	ProductID   *uuid.UUID
	ProductName string
	Price       int64
	Quantity    int
}

// CreateOrderParams carries the order-creation input. Total is trusted from
// the caller and not reconciled against the line items.
type CreateOrderParams struct {
	UserID       *uuid.UUID
	CustomerName string
	Email        string
	Phone        string
	Address      string
	Items        []OrderItemParams
	Total        int64
	Notes        string
}

// Create persists a new pending order with its history seeded, then fires a
// best-effort admin notification.
func (s *OrderService) Create(ctx context.Context, p CreateOrderParams) (*models.Order, error) {
	now := s.now()
	order := &models.Order{
		UserID:       p.UserID,
		CustomerName: p.CustomerName,
		Email:        p.Email,
		Phone:        p.Phone,
		Address:      p.Address,
		Total:        p.Total,
		Notes:        p.Notes,
		Status:       models.StatusPending,
		StatusHistory: models.StatusHistory{
			{Status: models.StatusPending, Timestamp: now},
		},
	}
	for _, it := range p.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price,
			Quantity:    it.Quantity,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.notifyAdmin(ctx, order)
	return order, nil
}

func (s *OrderService) notifyAdmin(ctx context.Context, order *models.Order) {
	if s.adminEmail == "" {
		return
	}
	lines := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, fmt.Sprintf("%d x %s (%s)", it.Quantity, it.ProductName, FormatPrice(it.Price)))
	}
	subject, html, text := newOrderEmail(order.ID.String(), order.CustomerName, order.Total, lines)
	if !s.mailer.Send(ctx, s.adminEmail, subject, html, text) {
		log.Printf("[Order] admin notification for order %s not sent", order.ID)
	}
}

// UpdateStatusParams carries an admin status update. The optional fields
// fall back to the order's existing values when nil.
type UpdateStatusParams struct {
	Status            string
	TrackingNumber    *string
	EstimatedDelivery *time.Time
	Notes             *string
}

// UpdateStatus moves the order to a new status. A history entry is appended
// only when the status actually changes; tracking number, estimated delivery
// and notes are refreshed either way.
//
// The write is guarded by the order's version column. On a concurrent update
// the read-modify-write is retried a bounded number of times, so two racing
// calls serialize instead of losing a history entry.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, p UpdateStatusParams) (*models.Order, error) {
	for attempt := 0; attempt < statusUpdateRetries; attempt++ {
		order, err := s.orders.GetByID(ctx, id)
		if err != nil {
			if err == store.ErrNotFound {
				return nil, ErrNotFound
			}
			return nil, err
		}

		if p.TrackingNumber != nil {
			order.TrackingNumber = *p.TrackingNumber
		}
		if p.EstimatedDelivery != nil {
			order.EstimatedDelivery = p.EstimatedDelivery
		}
		if p.Notes != nil {
			order.Notes = *p.Notes
		}

		if p.Status != order.Status {
			entry := models.StatusChange{
				Status:    p.Status,
				Timestamp: s.now(),
			}
			if p.TrackingNumber != nil {
				entry.TrackingNumber = *p.TrackingNumber
			}
			if p.EstimatedDelivery != nil {
				entry.EstimatedDelivery = p.EstimatedDelivery
			}
			if p.Notes != nil {
				entry.Notes = *p.Notes
			}
			order.StatusHistory = append(order.StatusHistory, entry)
			order.Status = p.Status
		}

		err = s.orders.SaveGuarded(ctx, order, order.Version)
		if err == nil {
			return order, nil
		}
		if err != store.ErrVersionConflict {
			return nil, err
		}
		log.Printf("[Order] version conflict updating %s, attempt %d", id, attempt+1)
	}
	return nil, ErrUpdateConflict
}

// OwnerUpdateParams carries the fields an order's owner may change before
// the order reaches a terminal status.
type OwnerUpdateParams struct {
	Address *string
	Phone   *string
	Items   []OrderItemParams
}

// OwnerUpdate lets the owning user adjust delivery details while the order
// is still open. Status and history are never touched here.
func (s *OrderService) OwnerUpdate(ctx context.Context, id, userID uuid.UUID, p OwnerUpdateParams) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if order.UserID == nil || *order.UserID != userID {
		return nil, ErrNotOwner
	}
	if models.IsTerminalStatus(order.Status) {
		return nil, ErrOrderTerminal
	}

	if p.Address != nil {
		order.Address = *p.Address
	}
	if p.Phone != nil {
		order.Phone = *p.Phone
	}

	// Details and items commit together, or not at all.
	var items []models.OrderItem
	if p.Items != nil {
		items = make([]models.OrderItem, 0, len(p.Items))
		for _, it := range p.Items {
			items = append(items, models.OrderItem{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Price:       it.Price,
				Quantity:    it.Quantity,
			})
		}
	}

	if err := s.orders.SaveGuardedWithItems(ctx, order, order.Version, items); err != nil {
		if err == store.ErrVersionConflict {
			return nil, ErrUpdateConflict
		}
		return nil, err
	}
	if items != nil {
		order.Items = items
	}

	return order, nil
}

// Get returns one order, restricted to its owner unless admin is set.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID, userID uuid.UUID, admin bool) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !admin && (order.UserID == nil || *order.UserID != userID) {
		return nil, ErrNotFound
	}
	return order, nil
}

// ListForUser returns the user's orders newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Order, int64, error) {
	return s.orders.ListByUser(ctx, userID, status, limit, offset)
}

// ListAll returns every order newest first.
func (s *OrderService) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Order, int64, error) {
	return s.orders.ListAll(ctx, status, limit, offset)
}
