package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/policy"
	"github.com/sakashimaa/webshop/internal/repository"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	"go.uber.org/zap"
)

type CatalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, actor domain.Actor, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, actor domain.Actor, id int64, in domain.ProductInput) (*domain.Product, error)
	Hide(ctx context.Context, actor domain.Actor, id int64) (*domain.Product, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	outboxRepo  EventSaver
	pool        *pgxpool.Pool
	logger      *zap.Logger
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	outboxRepo EventSaver,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		pool:        pool,
		logger:      logger,
	}
}

func (s *catalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.productRepo.ListVisible(ctx)
}

func (s *catalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *catalogService) Create(ctx context.Context, actor domain.Actor, in domain.ProductInput) (*domain.Product, error) {
	if err := policy.CreateProduct(actor); err != nil {
		return nil, err
	}

	var product domain.Product
	in.Apply(&product)

	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		if err := s.productRepo.Create(ctx, tx, &product); err != nil {
			return err
		}

		return s.emit(ctx, tx, domain.EventProductCreated, &product)
	})
	if err != nil {
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Product created", zap.Int64("product_id", product.ID))

	return &product, nil
}

func (s *catalogService) Update(ctx context.Context, actor domain.Actor, id int64, in domain.ProductInput) (*domain.Product, error) {
	if err := policy.UpdateProduct(actor); err != nil {
		return nil, err
	}

	product := domain.Product{ID: id}
	in.Apply(&product)

	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		if err := s.productRepo.Update(ctx, tx, &product); err != nil {
			return err
		}

		return s.emit(ctx, tx, domain.EventProductUpdated, &product)
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// Hide takes the product out of the catalog without deleting it.
func (s *catalogService) Hide(ctx context.Context, actor domain.Actor, id int64) (*domain.Product, error) {
	if err := policy.HideProduct(actor); err != nil {
		return nil, err
	}

	var product *domain.Product
	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		var err error
		if product, err = s.productRepo.Hide(ctx, tx, id); err != nil {
			return err
		}

		return s.emit(ctx, tx, domain.EventProductHidden, product)
	})
	if err != nil {
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Product hidden", zap.Int64("product_id", id))

	return product, nil
}

func (s *catalogService) emit(ctx context.Context, tx pgx.Tx, eventType string, p *domain.Product) error {
	return emitEvent(
		ctx,
		tx,
		s.outboxRepo,
		s.logger,
		domain.ProductEventsTopic,
		domain.ProductAggregate,
		p.ID,
		eventType,
		domain.NewProductChangedEvent(p),
	)
}
