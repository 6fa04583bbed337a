package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Order, error)
	GetItems(ctx context.Context, orderID int64) ([]domain.OrderLineItem, error)
	List(ctx context.Context, ownerID *int64) ([]domain.Order, error)
	UpdateContact(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	ChangeStatus(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	AddLineItem(ctx context.Context, tx pgx.Tx, item *domain.OrderLineItem) error
}

type orderRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/order_repo"),
	}
}

const orderColumns = `id, user_id, first_name, last_name, phone, email, status, created_at, updated_at`

func scanOrder(row pgx.Row, o *domain.Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.FirstName,
		&o.LastName,
		&o.Phone,
		&o.Email,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

// Create inserts the order row and every line item in order.Items.
func (r *orderRepo) Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.Int("items_count", len(order.Items)),
	)

	query := `
		INSERT INTO orders (user_id, first_name, last_name, phone, email, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx,
		query,
		order.UserID,
		order.FirstName,
		order.LastName,
		order.Phone,
		order.Email,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.Error(err),
		)

		if isPgError(err, pgForeignKeyViolation) {
			return ErrUserNotFound
		}

		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := r.AddLineItem(ctx, tx, &order.Items[i]); err != nil {
			return err
		}
	}

	return nil
}

func (r *orderRepo) AddLineItem(ctx context.Context, tx pgx.Tx, item *domain.OrderLineItem) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.AddLineItem")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", item.OrderID),
		attribute.Int64("product_id", item.ProductID),
		attribute.Int("quantity", item.Quantity),
	)

	query := `
		INSERT INTO order_line_items (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query, item.OrderID, item.ProductID, item.Quantity).Scan(&item.ID)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			mylogger.Warn(
				ctx,
				r.logger,
				"Line item references missing row",
				zap.Int64("order_id", item.OrderID),
				zap.Int64("product_id", item.ProductID),
			)

			return ErrProductNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to insert order line item",
			zap.Int64("order_id", item.OrderID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert order line item: %w", err)
	}

	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	order, err := r.get(ctx, r.pool, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil && !errors.Is(err, ErrOrderNotFound) {
		span.RecordError(err)
	}

	return order, err
}

// GetForUpdate locks the order row until tx ends.
func (r *orderRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetForUpdate")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	order, err := r.get(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	if err != nil && !errors.Is(err, ErrOrderNotFound) {
		span.RecordError(err)
	}

	return order, err
}

func (r *orderRepo) get(ctx context.Context, q querier, query string, id int64) (*domain.Order, error) {
	var order domain.Order
	if err := scanOrder(q.QueryRow(ctx, query, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query order",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return &order, nil
}

func (r *orderRepo) GetItems(ctx context.Context, orderID int64) ([]domain.OrderLineItem, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetItems")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", orderID))

	query := `
		SELECT id, order_id, product_id, quantity
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query items of order",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query items of order: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderLineItem, 0)
	for rows.Next() {
		var item domain.OrderLineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("order items iteration: %w", err)
	}

	return items, nil
}

// List returns every order when ownerID is nil, otherwise only the orders
// of that user. Newest first.
func (r *orderRepo) List(ctx context.Context, ownerID *int64) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any

	if ownerID != nil {
		span.SetAttributes(attribute.Int64("owner_id", *ownerID))

		query += ` WHERE user_id = $1`
		args = append(args, *ownerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Error getting orders", zap.Error(err))

		return nil, fmt.Errorf("error selecting orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("orders iteration: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(orders)))

	return orders, nil
}

func (r *orderRepo) UpdateContact(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateContact")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", order.ID))

	query := `
		UPDATE orders
		SET first_name = $1, last_name = $2, phone = $3, email = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := tx.QueryRow(
		ctx,
		query,
		order.FirstName,
		order.LastName,
		order.Phone,
		order.Email,
		order.ID,
	).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update order",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}

func (r *orderRepo) ChangeStatus(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ChangeStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", order.ID),
		attribute.String("status", string(order.Status)),
	)

	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at
	`

	if err := tx.QueryRow(ctx, query, order.Status, order.ID).Scan(&order.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update order status",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}
