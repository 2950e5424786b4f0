package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ms-topup/internal/models"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when no order matches the given ID.
var ErrNotFound = errors.New("order not found")

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

// CreateOrder → insert new order
func (d *DB) CreateOrder(order models.Order) error {
	_, err := d.Bun.NewInsert().Model(&order).Exec(context.Background())
	return err
}

// GetOrderByID → fetch one order by its ID
func (d *DB) GetOrderByID(id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("order_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus → persist a status transition. Only the status and
// updated_at columns change; created_at is immutable after insert.
func (d *DB) UpdateOrderStatus(id, status string, updatedAt time.Time) (*models.Order, error) {
	order := models.Order{OrderID: id, Status: status, UpdatedAt: &updatedAt}
	res, err := d.Bun.NewUpdate().
		Model(&order).
		Column("status", "updated_at").
		Where("order_id = ?", id).
		Exec(context.Background())
	if err != nil {
		return nil, err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrNotFound
	}
	return d.GetOrderByID(id)
}

// GetOrdersByEmail → fetch a customer's orders, most recent first
func (d *DB) GetOrdersByEmail(email string) ([]models.Order, error) {
	orders := []models.Order{}
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("user_email = ?", email).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetAllOrders → fetch every order (admin view)
func (d *DB) GetAllOrders() ([]models.Order, error) {
	orders := []models.Order{}
	err := d.Bun.NewSelect().
		Model(&orders).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}
