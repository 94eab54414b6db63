package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// SubscriptionPlan is a priced feature bundle with a trial window. Pricing
// and feature lists are super-admin territory; everyone may read.
type SubscriptionPlan struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	PriceAmount  decimal.Decimal `gorm:"column:price_amount;type:numeric(12,2);not null"`
	CurrencyCode string          `gorm:"column:currency_code;not null;default:'USD'"`
	TrialDays    int             `gorm:"column:trial_days;not null;default:0"`
	Features     pq.StringArray  `gorm:"column:features;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
