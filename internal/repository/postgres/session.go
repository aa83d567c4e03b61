package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

var ErrSessionNotFound = errors.New("checkout session not found")

// SessionRepository хранит ссылки "сессия разговора -> черновик заказа"
// сами заказы живут в магазине, здесь только id и ключ
type SessionRepository struct {
	db *pgxpool.Pool
	sq squirrel.StatementBuilderType
}

// NewSessionRepository создает новый экземпляр репозитория
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db: db,
		// использую плейсхолдеры в стиле PostgreSQL ($1, $2, $3,...)
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// SaveSession сохраняет ссылку сессии на заказ
// повторный add-to-cart в той же сессии перезаписывает ссылку на новый заказ
func (r *SessionRepository) SaveSession(ctx context.Context, s model.CheckoutSession) error {
	const op = "repository.postgres.session.SaveSession"

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}

	sql, args, err := r.sq.Insert("checkout_sessions").
		Columns("session_id", "order_id", "order_key", "delivery_zip", "status", "created_at", "updated_at").
		Values(s.SessionID, s.OrderID, s.OrderKey, s.DeliveryZip, string(s.Status), s.CreatedAt, s.UpdatedAt).
		Suffix(`ON CONFLICT (session_id) DO UPDATE SET
			order_id = EXCLUDED.order_id,
			order_key = EXCLUDED.order_key,
			delivery_zip = EXCLUDED.delivery_zip,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: failed to upsert checkout session: %w", op, err)
	}
	return nil
}

// GetSession извлекает ссылку на заказ по id сессии
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (model.CheckoutSession, error) {
	const op = "repository.postgres.session.GetSession"

	sql, args, err := r.sq.Select("session_id", "order_id", "order_key", "delivery_zip", "status", "created_at", "updated_at").
		From("checkout_sessions").
		Where(squirrel.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return model.CheckoutSession{}, fmt.Errorf("%s: failed to build select query: %w", op, err)
	}

	var (
		s      model.CheckoutSession
		status string
	)
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.SessionID, &s.OrderID, &s.OrderKey, &s.DeliveryZip, &status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CheckoutSession{}, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}
		return model.CheckoutSession{}, fmt.Errorf("%s: failed to query checkout session: %w", op, err)
	}
	s.Status = model.OrderStatus(status)

	return s, nil
}

// MarkUpdated отмечает, что в заказ дописаны данные клиента
// ключ заказа обновляем: магазин мог выдать новый
func (r *SessionRepository) MarkUpdated(ctx context.Context, orderID int64, orderKey string) error {
	const op = "repository.postgres.session.MarkUpdated"

	q := r.sq.Update("checkout_sessions").
		Set("status", string(model.OrderPendingUpdated)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"order_id": orderID})
	if orderKey != "" {
		q = q.Set("order_key", orderKey)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to update checkout session: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}
	return nil
}
