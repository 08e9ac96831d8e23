package orderrepo

import (
	"context"
	"errors"
	"time"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository on PostgreSQL.
//
// The *gorm.DB must be opened with TranslateError enabled so unique violations
// surface as gorm.ErrDuplicatedKey.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Migrate creates or updates the orders table and rewrites legacy status
// spellings to their canonical names so conditional updates can match them.
func (r *GormOrderRepository) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&OrderDTO{}); err != nil {
		return errs.NewStorageError("migrate orders", err)
	}

	var raw []string
	if err := db.Model(&OrderDTO{}).Distinct().Pluck("status", &raw).Error; err != nil {
		return errs.NewStorageError("list order statuses", err)
	}
	for _, s := range raw {
		status, err := order.ParseStatus(s)
		if err != nil || status.String() == s {
			continue
		}
		err = db.Model(&OrderDTO{}).Where("status = ?", s).Update("status", status.String()).Error
		if err != nil {
			return errs.NewStorageError("normalize order status", err)
		}
	}
	return nil
}

func (r *GormOrderRepository) Create(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewObjectAlreadyExistsErrorWithCause("order", aggregate.ID().String(), err)
		}
		return errs.NewStorageError("create order", err)
	}
	return nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, errs.NewStorageError("get order", err)
	}
	return toDomain(dto)
}

// ConditionalUpdate writes every mutable column in one UPDATE guarded by
// id, status and version. Zero rows affected means the order is gone or a
// concurrent writer got there first.
func (r *GormOrderRepository) ConditionalUpdate(ctx context.Context, aggregate *order.Order, expected order.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&OrderDTO{}).
		Where("id = ? AND status = ? AND version = ?", dto.ID, expected.String(), aggregate.Version()).
		Updates(map[string]any{
			"status":             dto.Status,
			"pickup_code":        dto.PickupCode,
			"asset_refs":         dto.AssetRefs,
			"pending_asset_refs": dto.PendingAssetRefs,
			"payment_ref":        dto.PaymentRef,
			"printed_at":         dto.PrintedAt,
			"reclaimed_at":       dto.ReclaimedAt,
			"version":            gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return errs.NewObjectAlreadyExistsErrorWithCause("pickupCode", aggregate.PickupCode().String(), result.Error)
		}
		return errs.NewStorageError("update order", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := db.Model(&OrderDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
		return errs.NewStorageError("check order", err)
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	return errs.NewPreconditionFailedError("order", aggregate.ID().String(), expected.String())
}

func (r *GormOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	result := r.db.WithContext(ctx).Delete(&OrderDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return errs.NewStorageError("delete order", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	return nil
}

func (r *GormOrderRepository) QueryByStatusAndAge(
	ctx context.Context, statuses []order.Status, olderThan time.Time, limit int,
) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).
		Where("status IN ? AND created_at <= ?", statusNames(statuses), olderThan.UTC())
	return r.find(query, limit, "query orders by status and age")
}

func (r *GormOrderRepository) QueryUnreclaimed(ctx context.Context, statuses []order.Status, limit int) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).
		Where("status IN ? AND (reclaimed_at IS NULL OR cardinality(pending_asset_refs) > 0)", statusNames(statuses))
	return r.find(query, limit, "query unreclaimed orders")
}

func (r *GormOrderRepository) QueryByCode(ctx context.Context, code kernel.PickupCode) (*order.Order, error) {
	if code.IsZero() {
		return nil, errs.NewObjectNotFoundError("pickupCode", "")
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "pickup_code = ?", code.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("pickupCode", code.String())
		}
		return nil, errs.NewStorageError("query order by code", err)
	}
	return toDomain(dto)
}

// QueryByAssetRef uses array containment so the GIN index on asset_refs applies.
func (r *GormOrderRepository) QueryByAssetRef(ctx context.Context, ref kernel.AssetRef, limit int) ([]kernel.UUID, error) {
	query := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("asset_refs @> ?", pq.StringArray{ref.String()}).
		Order("created_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var raw []uuid.UUID
	if err := query.Pluck("id", &raw).Error; err != nil {
		return nil, errs.NewStorageError("query orders by asset ref", err)
	}
	ids := make([]kernel.UUID, 0, len(raw))
	for _, b := range raw {
		id, err := kernel.UUIDFromBytes(b[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *GormOrderRepository) find(query *gorm.DB, limit int, op string) ([]*order.Order, error) {
	query = query.Order("created_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []OrderDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, errs.NewStorageError(op, err)
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func statusNames(statuses []order.Status) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	return names
}
