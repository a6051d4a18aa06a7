package repository

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/atvtrailers/shop-api/internal/model"
)

// Orders is the persistence-backed store for placed orders
type Orders struct {
	db       *bun.DB
	idPrefix string
}

// NewOrders creates a new Orders repository. The prefix is prepended to
// every generated external order id.
func NewOrders(db *bun.DB, idPrefix string) *Orders {
	return &Orders{db: db, idPrefix: idPrefix}
}

// List returns every order, newest first
func (r *Orders) List(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	if err := r.db.NewSelect().Model(&orders).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list orders")
	}
	return orders, nil
}

// ListByUser returns the orders attributed to a user, newest first
func (r *Orders) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.NewSelect().Model(&orders).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list orders")
	}
	return orders, nil
}

// GetByOrderID returns the order with the given external id
func (r *Orders) GetByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	order := &model.Order{}
	err := r.db.NewSelect().Model(order).
		Where("?TableAlias.order_id = ?", orderID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("order")
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve order")
	}
	return order, nil
}

// Create assigns the generated external id, stamps the creation date, and
// inserts the order with its initial Processing status.
func (r *Orders) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	order.ID = uuid.New()
	order.OrderID = r.idPrefix + uuid.NewString()
	order.Status = model.StatusProcessing
	if order.Date.IsZero() {
		order.Date = time.Now()
	}

	if _, err := r.db.NewInsert().Model(order).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create order")
	}

	return order, nil
}

// UpdateStatus sets the status of the order with the given external id.
// The rest of the order is immutable after creation.
func (r *Orders) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	res, err := r.db.NewUpdate().Model((*model.Order)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("order_id = ?", orderID).
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update order status")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFound("order")
	}

	return r.GetByOrderID(ctx, orderID)
}

// Delete removes the order with the given external id
func (r *Orders) Delete(ctx context.Context, orderID string) error {
	res, err := r.db.NewDelete().Model((*model.Order)(nil)).
		Where("order_id = ?", orderID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete order")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("order")
	}

	return nil
}
