package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-topup/internal/models"
	"ms-topup/internal/order/db"

	"github.com/google/uuid"
)

var (
	// ErrOrderNotFound signals an unknown order ID on a status update.
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmptyStatus signals a status transition with no target label.
	ErrEmptyStatus = errors.New("missing status")
)

type DBLayer interface {
	CreateOrder(order models.Order) error
	GetOrderByID(id string) (*models.Order, error)
	UpdateOrderStatus(id, status string, updatedAt time.Time) (*models.Order, error)
	GetOrdersByEmail(email string) ([]models.Order, error)
	GetAllOrders() ([]models.Order, error)
}

// Notifier receives lifecycle events after the persistence write has
// completed. Implementations are best-effort; they must not return
// errors into the lifecycle path.
type Notifier interface {
	OrderCreated(order models.Order)
	StatusChanged(order models.Order, status string)
}

type OrderService struct {
	DB       DBLayer
	Notifier Notifier
}

func NewOrderService(db DBLayer, notifier Notifier) *OrderService {
	return &OrderService{DB: db, Notifier: notifier}
}

// CreateOrder persists a customer submission. The status is forced to
// pending regardless of anything in the payload, and the creation
// timestamp is set exactly once here. proofURL may be empty when no
// payment screenshot was uploaded.
func (s *OrderService) CreateOrder(req models.OrderRequest, proofURL string) (*models.Order, error) {
	order := models.Order{
		OrderID:           uuid.NewString(),
		UserEmail:         req.Email,
		GameID:            req.GameID,
		Username:          req.Username,
		ServerID:          req.ServerID,
		PackageName:       req.PackageName,
		Price:             req.Price,
		PaymentMethod:     req.PaymentMethod,
		TransactionID:     req.TransactionID,
		OrderNote:         req.OrderNote,
		PaymentScreenshot: proofURL,
		Status:            models.StatusPending,
		Receiver:          "N/A",
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.DB.CreateOrder(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Write is durable, notification fan-out comes strictly after.
	s.Notifier.OrderCreated(order)

	return &order, nil
}

// GetOrder fetches a single order by ID.
func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	found, err := s.DB.GetOrderByID(id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return found, err
}

// ListOrders returns a customer's orders newest-first. An unknown
// email is an empty slice, never an error.
func (s *OrderService) ListOrders(email string) ([]models.Order, error) {
	return s.DB.GetOrdersByEmail(email)
}

// ListAllOrders returns every order for the admin dashboard.
func (s *OrderService) ListAllOrders() ([]models.Order, error) {
	return s.DB.GetAllOrders()
}

// UpdateStatus moves an order to an admin-supplied status label. Any
// non-empty label is accepted; there are no terminal states.
func (s *OrderService) UpdateStatus(id, status string) (*models.Order, error) {
	if strings.TrimSpace(status) == "" {
		return nil, ErrEmptyStatus
	}

	updated, err := s.DB.UpdateOrderStatus(id, status, time.Now().UTC())
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", id, err)
	}

	s.Notifier.StatusChanged(*updated, status)

	return updated, nil
}
