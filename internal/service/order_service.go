package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/policy"
	"github.com/sakashimaa/webshop/internal/repository"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderService interface {
	Checkout(ctx context.Context, actor domain.Actor, contact domain.OrderContact, basket domain.Basket) (*domain.Order, error)
	Create(ctx context.Context, actor domain.Actor, in domain.CreateOrderInput) (*domain.Order, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Order, error)
	Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error)
	Load(ctx context.Context, actor domain.Actor, id int64, rule policy.OrderRule) (*domain.Order, error)
	UpdateContact(ctx context.Context, actor domain.Actor, id int64, contact domain.OrderContact) (*domain.Order, error)
	Deliver(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error)
	Cancel(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error)
	AddLineItem(ctx context.Context, actor domain.Actor, orderID int64, in domain.LineItemInput) (*domain.OrderLineItem, error)
}

type orderService struct {
	pool       *pgxpool.Pool
	logger     *zap.Logger
	orderRepo  repository.OrderRepository
	outboxRepo EventSaver
	tracer     trace.Tracer
}

func NewOrderService(pool *pgxpool.Pool, logger *zap.Logger, orderRepo repository.OrderRepository, outboxRepo EventSaver) OrderService {
	return &orderService{
		pool:       pool,
		logger:     logger,
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		tracer:     otel.Tracer("order_service"),
	}
}

// Checkout turns the basket into an order with one line item per distinct
// product. Clearing the basket is left to the caller once this returns nil.
func (s *orderService) Checkout(ctx context.Context, actor domain.Actor, contact domain.OrderContact, basket domain.Basket) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Checkout")
	defer span.End()

	if basket.IsEmpty() {
		return nil, domain.ErrEmptyBasket
	}

	totals := basket.Totals()
	items := make([]domain.OrderLineItem, 0, len(totals))
	for _, t := range totals {
		productID, err := strconv.ParseInt(t.ProductID, 10, 64)
		if err != nil {
			mylogger.Warn(ctx, s.logger, "Malformed product id in basket", zap.String("product_id", t.ProductID))
			return nil, repository.ErrProductNotFound
		}
		items = append(items, domain.OrderLineItem{ProductID: productID, Quantity: t.Quantity})
	}

	order := &domain.Order{
		UserID: actor.OwnerID(),
		Status: domain.OrderStatusNew,
		Items:  items,
	}
	order.SetContact(contact)

	span.SetAttributes(attribute.Int("items_count", len(items)))

	if err := s.create(ctx, order); err != nil {
		return nil, err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Order checked out",
		zap.Int64("order_id", order.ID),
		zap.Int("items_count", len(items)),
	)

	return order, nil
}

func (s *orderService) Create(ctx context.Context, actor domain.Actor, in domain.CreateOrderInput) (*domain.Order, error) {
	if err := policy.CreateOrder(actor); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.OrderStatusNew
	}

	order := &domain.Order{
		UserID: in.UserID,
		Status: status,
		Items:  []domain.OrderLineItem{},
	}
	order.SetContact(in.OrderContact)

	if err := s.create(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderService) create(ctx context.Context, order *domain.Order) error {
	return inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}

		event := domain.OrderCreatedEvent{
			OrderID: order.ID,
			UserID:  order.UserID,
			Items:   make([]domain.OrderItemEvent, 0, len(order.Items)),
		}
		for _, item := range order.Items {
			event.Items = append(event.Items, domain.OrderItemEvent{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		return s.emit(ctx, tx, order.ID, domain.EventOrderCreated, event)
	})
}

func (s *orderService) List(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	all, err := policy.ListOrders(actor)
	if err != nil {
		return nil, err
	}

	if all {
		return s.orderRepo.List(ctx, nil)
	}

	return s.orderRepo.List(ctx, actor.OwnerID())
}

func (s *orderService) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.ViewOrder(actor, order); err != nil {
		return nil, err
	}

	if order.Items, err = s.orderRepo.GetItems(ctx, id); err != nil {
		return nil, err
	}

	return order, nil
}

// Load fetches the order without line items and applies rule to it. It backs
// the form endpoints that only need to know whether an action is allowed.
func (s *orderService) Load(ctx context.Context, actor domain.Actor, id int64, rule policy.OrderRule) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := rule(actor, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderService) UpdateContact(ctx context.Context, actor domain.Actor, id int64, contact domain.OrderContact) (*domain.Order, error) {
	var order *domain.Order

	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		var err error
		if order, err = s.orderRepo.GetForUpdate(ctx, tx, id); err != nil {
			return err
		}

		if err := policy.UpdateOrder(actor, order); err != nil {
			return err
		}

		order.SetContact(contact)
		return s.orderRepo.UpdateContact(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderService) Deliver(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error) {
	if err := policy.DeliverOrder(actor); err != nil {
		return nil, err
	}

	return s.transition(ctx, id, (*domain.Order).Deliver, domain.EventOrderDelivered)
}

// Cancel marks the order canceled. Canceled orders stay in the database.
func (s *orderService) Cancel(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error) {
	if err := policy.CancelOrder(actor); err != nil {
		return nil, err
	}

	return s.transition(ctx, id, (*domain.Order).Cancel, domain.EventOrderCanceled)
}

func (s *orderService) transition(ctx context.Context, id int64, apply func(*domain.Order) error, eventType string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.transition")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
		attribute.String("event_type", eventType),
	)

	var order *domain.Order

	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		var err error
		if order, err = s.orderRepo.GetForUpdate(ctx, tx, id); err != nil {
			return err
		}

		if err := apply(order); err != nil {
			mylogger.Warn(
				ctx,
				s.logger,
				"Rejected order transition",
				zap.Int64("order_id", id),
				zap.String("status", string(order.Status)),
				zap.String("event_type", eventType),
			)

			return err
		}

		if err := s.orderRepo.ChangeStatus(ctx, tx, order); err != nil {
			return err
		}

		return s.emit(ctx, tx, order.ID, eventType, domain.OrderStatusChangedEvent{
			OrderID: order.ID,
			Status:  order.Status,
		})
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidTransition) && !errors.Is(err, repository.ErrOrderNotFound) {
			span.RecordError(err)
		}
		return nil, err
	}

	return order, nil
}

func (s *orderService) AddLineItem(ctx context.Context, actor domain.Actor, orderID int64, in domain.LineItemInput) (*domain.OrderLineItem, error) {
	item := &domain.OrderLineItem{
		OrderID:   orderID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
	}

	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if err := policy.AddLineItem(actor, order); err != nil {
			return err
		}

		if err := s.orderRepo.AddLineItem(ctx, tx, item); err != nil {
			return err
		}

		return s.emit(ctx, tx, orderID, domain.EventOrderLineItemAdded, domain.OrderLineItemAddedEvent{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("add line item to order %d: %w", orderID, err)
	}

	return item, nil
}

func (s *orderService) emit(ctx context.Context, tx pgx.Tx, orderID int64, eventType string, payload any) error {
	return emitEvent(
		ctx,
		tx,
		s.outboxRepo,
		s.logger,
		domain.OrderEventsTopic,
		domain.OrderAggregate,
		orderID,
		eventType,
		payload,
	)
}
