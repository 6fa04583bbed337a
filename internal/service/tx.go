package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	outboxDomain "github.com/sakashimaa/webshop/pkg/outbox/domain"
	"go.uber.org/zap"
)

// EventSaver writes an outbox row inside the caller's transaction.
type EventSaver interface {
	SaveOutboxEvent(ctx context.Context, tx pgx.Tx, event *outboxDomain.OutboxEvent) error
}

// inTx runs fn in a transaction and commits when fn returns nil.
func inTx(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		mylogger.Error(ctx, logger, "Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(cleanupCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(cleanupCtx, logger, "Error rolling back transaction", zap.Error(err))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, logger, "Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func emitEvent(
	ctx context.Context,
	tx pgx.Tx,
	saver EventSaver,
	logger *zap.Logger,
	topic, aggregateType string,
	aggregateID int64,
	eventType string,
	payload any,
) error {
	event, err := outboxDomain.NewEvent(topic, aggregateType, strconv.FormatInt(aggregateID, 10), eventType, payload)
	if err != nil {
		return err
	}

	if err := saver.SaveOutboxEvent(ctx, tx, event); err != nil {
		mylogger.Error(
			ctx,
			logger,
			"Error saving outbox event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)

		return fmt.Errorf("failed to save %s event: %w", eventType, err)
	}

	return nil
}
