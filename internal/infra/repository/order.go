package repository

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"storefront-core/internal/domain/order"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"
	"storefront-core/internal/pkg/pgconv"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, owner_id, shipping_region, shipping_fee, total_amount, status,
	cancellation_reason, cancelled_at, created_at, updated_at`

type OrderRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewOrderRepository(dbtx db.DBTX, logger *slog.Logger) *OrderRepository {
	return &OrderRepository{db: dbtx, logger: logger}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID(), o.OwnerID(), o.ShippingRegion().String(), o.ShippingFee(), o.TotalAmount(), o.Status().String(),
		pgconv.StringPtrToPgtype(o.CancellationReason()), pgconv.TimePtrToPgtype(o.CancelledAt()),
		o.CreatedAt(), o.UpdatedAt(),
	)
	if err != nil {
		return classify(r.logger, "failed to create order", err)
	}

	items := o.Items()
	lineNos := make([]int32, len(items))
	productIDs := make([]uuid.UUID, len(items))
	names := make([]string, len(items))
	prices := make([]int64, len(items))
	quantities := make([]int32, len(items))
	for i, it := range items {
		lineNos[i] = int32(i + 1) // #nosec G115 -- item count is bounded by the request size
		productIDs[i] = it.ProductID
		names[i] = it.Name
		prices[i] = it.UnitPrice
		quantities[i] = int32(it.Quantity) // #nosec G115
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO order_items (order_id, line_no, product_id, name, unit_price, quantity)
		SELECT $1, t.line_no, t.product_id, t.name, t.unit_price, t.quantity
		FROM unnest($2::int[], $3::uuid[], $4::text[], $5::bigint[], $6::int[])
			AS t(line_no, product_id, name, unit_price, quantity)`,
		o.ID(), lineNos, productIDs, names, prices, quantities,
	)
	if err != nil {
		return classify(r.logger, "failed to create order items", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	rec, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, classify(r.logger, "order not found", err)
	}

	items, err := r.loadItems(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return rec.toDomain(items[id]), nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, cancellation_reason = $3, cancelled_at = $4, updated_at = $5
		WHERE id = $1`,
		o.ID(), o.Status().String(),
		pgconv.StringPtrToPgtype(o.CancellationReason()), pgconv.TimePtrToPgtype(o.CancelledAt()),
		o.UpdatedAt(),
	)
	if err != nil {
		return classify(r.logger, "failed to update order", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("order not found")
	}
	return nil
}

func (r *OrderRepository) UpdateIfStatus(ctx context.Context, o *order.Order, expected order.Status) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, cancellation_reason = $3, cancelled_at = $4, updated_at = $5
		WHERE id = $1 AND status = $6`,
		o.ID(), o.Status().String(),
		pgconv.StringPtrToPgtype(o.CancellationReason()), pgconv.TimePtrToPgtype(o.CancelledAt()),
		o.UpdatedAt(), expected.String(),
	)
	if err != nil {
		return false, classify(r.logger, "failed to update order status", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OrderRepository) HasCompletedWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN order_items i ON i.order_id = o.id
			WHERE o.owner_id = $1 AND o.status = $2 AND i.product_id = $3
		)`,
		userID, order.StatusCompleted.String(), productID,
	).Scan(&exists)
	if err != nil {
		return false, classify(r.logger, "failed to check review eligibility", err)
	}
	return exists, nil
}

func (r *OrderRepository) List(ctx context.Context, filter shared.OrderFilter) ([]*order.Order, error) {
	var (
		conds []string
		args  []any
	)
	placeholder := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.OwnerID != nil {
		conds = append(conds, "owner_id = "+placeholder(*filter.OwnerID))
	}
	if filter.Status != nil {
		conds = append(conds, "status = "+placeholder(filter.Status.String()))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ` + placeholder(filter.Limit) + ` OFFSET ` + placeholder(filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(r.logger, "failed to list orders", err)
	}
	defer rows.Close()

	var recs []orderRecord
	for rows.Next() {
		rec, err := scanOrder(rows)
		if err != nil {
			return nil, classify(r.logger, "failed to scan order", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(r.logger, "failed to list orders", err)
	}

	ids := make([]uuid.UUID, len(recs))
	for i, rec := range recs {
		ids[i] = rec.id
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*order.Order, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain(items[rec.id]))
	}
	return out, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]order.Item, error) {
	out := make(map[uuid.UUID][]order.Item, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT order_id, product_id, name, unit_price, quantity
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, line_no`,
		orderIDs,
	)
	if err != nil {
		return nil, classify(r.logger, "failed to load order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID  uuid.UUID
			it       order.Item
			quantity int32
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.UnitPrice, &quantity); err != nil {
			return nil, classify(r.logger, "failed to scan order item", err)
		}
		it.Quantity = int(quantity)
		out[orderID] = append(out[orderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(r.logger, "failed to load order items", err)
	}
	return out, nil
}

type orderRecord struct {
	id                 uuid.UUID
	ownerID            uuid.UUID
	region             string
	shippingFee        int64
	totalAmount        int64
	status             string
	cancellationReason pgtype.Text
	cancelledAt        pgtype.Timestamptz
	createdAt          time.Time
	updatedAt          time.Time
}

func scanOrder(row scanner) (orderRecord, error) {
	var rec orderRecord
	err := row.Scan(
		&rec.id, &rec.ownerID, &rec.region, &rec.shippingFee, &rec.totalAmount, &rec.status,
		&rec.cancellationReason, &rec.cancelledAt, &rec.createdAt, &rec.updatedAt,
	)
	return rec, err
}

func (rec orderRecord) toDomain(items []order.Item) *order.Order {
	return order.Reconstruct(
		rec.id, rec.ownerID, items,
		order.Region(rec.region), rec.shippingFee, rec.totalAmount,
		order.Status(rec.status),
		pgconv.StringPtrFromPgtype(rec.cancellationReason),
		pgconv.TimePtrFromPgtype(rec.cancelledAt),
		rec.createdAt, rec.updatedAt,
	)
}
