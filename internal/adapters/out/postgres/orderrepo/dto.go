// Package orderrepo persists print orders in PostgreSQL through GORM.
//
// The orders table enforces pickup-code uniqueness with a partial unique index
// over non-null codes, so two live orders can never hold the same code even
// when two writers race. Asset refs are a text[] column with a GIN index to
// answer "who else references this asset" without a join table. Files a
// reclaimed order has not yet deleted sit in pending_asset_refs, which that
// lookup ignores.
package orderrepo

import (
	"encoding/json"
	"fmt"
	"time"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// OrderDTO is the row layout of the orders table.
type OrderDTO struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Status           string         `gorm:"type:varchar(32);not null;index:idx_orders_status_created,priority:1"`
	PickupCode       *string        `gorm:"type:varchar(6);uniqueIndex:uq_orders_live_pickup_code,where:pickup_code IS NOT NULL"`
	AssetRefs        pq.StringArray `gorm:"type:text[];not null;default:'{}';index:idx_orders_asset_refs,type:gin"`
	PendingAssetRefs pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	PrintSettings    datatypes.JSON `gorm:"type:jsonb;not null"`
	Amount           int64          `gorm:"not null"`
	TotalPages       int            `gorm:"not null"`
	PaymentRef       *string        `gorm:"type:varchar(128)"`
	CreatedAt        time.Time      `gorm:"not null;index:idx_orders_status_created,priority:2"`
	ExpiresAt        time.Time      `gorm:"not null"`
	PrintedAt        *time.Time
	ReclaimedAt      *time.Time
	Version          int64 `gorm:"not null;default:0"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type printSettingsDTO struct {
	Files []printFileDTO `json:"files"`
}

type printFileDTO struct {
	Name      string `json:"name,omitempty"`
	Color     string `json:"color"`
	PageCount int    `json:"pageCount"`
	Copies    int    `json:"copies"`
}

func fromDomain(o *order.Order) (OrderDTO, error) {
	files := o.Settings().Files()
	settings := printSettingsDTO{Files: make([]printFileDTO, 0, len(files))}
	for _, f := range files {
		settings.Files = append(settings.Files, printFileDTO{
			Name:      f.Name(),
			Color:     f.Color().String(),
			PageCount: f.PageCount(),
			Copies:    f.Copies(),
		})
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return OrderDTO{}, fmt.Errorf("encode print settings: %w", err)
	}

	dto := OrderDTO{
		ID:               o.ID().Bytes(),
		Status:           o.Status().String(),
		AssetRefs:        pq.StringArray(kernel.AssetRefStrings(o.AssetRefs())),
		PendingAssetRefs: pq.StringArray(kernel.AssetRefStrings(o.PendingAssetRefs())),
		PrintSettings:    datatypes.JSON(raw),
		Amount:           o.Amount(),
		TotalPages:       o.TotalPages(),
		CreatedAt:        o.CreatedAt().UTC(),
		ExpiresAt:        o.ExpiresAt().UTC(),
		PrintedAt:        utcPtr(o.PrintedAt()),
		ReclaimedAt:      utcPtr(o.ReclaimedAt()),
		Version:          o.Version(),
	}
	if code := o.PickupCode(); !code.IsZero() {
		s := code.String()
		dto.PickupCode = &s
	}
	if ref := o.PaymentRef(); ref != "" {
		dto.PaymentRef = &ref
	}
	return dto, nil
}

// toDomain accepts legacy status spellings; the repository rewrites them on migrate.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var code kernel.PickupCode
	if dto.PickupCode != nil {
		if code, err = kernel.NewPickupCode(*dto.PickupCode); err != nil {
			return nil, err
		}
	}
	refs, err := kernel.NewAssetRefs(dto.AssetRefs)
	if err != nil {
		return nil, err
	}
	pending, err := kernel.NewAssetRefs(dto.PendingAssetRefs)
	if err != nil {
		return nil, err
	}

	var stored printSettingsDTO
	if err := json.Unmarshal(dto.PrintSettings, &stored); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("printSettings", err)
	}
	files := make([]order.PrintFile, 0, len(stored.Files))
	for _, f := range stored.Files {
		color, err := order.ParseColorMode(f.Color)
		if err != nil {
			return nil, err
		}
		file, err := order.NewPrintFile(f.Name, color, f.PageCount, f.Copies)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	settings, err := order.NewPrintSettings(files)
	if err != nil {
		return nil, err
	}

	var paymentRef string
	if dto.PaymentRef != nil {
		paymentRef = *dto.PaymentRef
	}

	return order.RestoreOrder(order.RestoreParams{
		ID:               id,
		Status:           status,
		PickupCode:       code,
		AssetRefs:        refs,
		PendingAssetRefs: pending,
		Settings:         settings,
		Amount:           dto.Amount,
		TotalPages:       dto.TotalPages,
		PaymentRef:       paymentRef,
		CreatedAt:        dto.CreatedAt,
		ExpiresAt:        dto.ExpiresAt,
		PrintedAt:        dto.PrintedAt,
		ReclaimedAt:      dto.ReclaimedAt,
		Version:          dto.Version,
	})
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
