package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount types supported by campaigns.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Last-login filter options.
const (
	LastLoginActive   = "active"
	LastLoginInactive = "inactive"
)

// Customer is a read-only view of a customer record. Attributes are mutated
// by external systems; this service only queries them.
type Customer struct {
	ID             int64           `json:"id"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	DateJoined     time.Time       `json:"date_joined"`
	TotalSpend     decimal.Decimal `json:"total_spend"`
	LastLogin      *time.Time      `json:"last_login,omitempty"` // nil = never logged in
	CreditCardType *string         `json:"credit_card_type,omitempty"`
}

// SegmentFilter is the conjunction of optional predicates that defines a
// segment's membership. A nil field means the predicate is absent and imposes
// no constraint. A filter with no present predicates matches no one.
//
// The last-login predicate only takes effect when both LastLoginOption and
// LastLoginThreshold are set.
type SegmentFilter struct {
	MinSpend           *decimal.Decimal `json:"min_spend,omitempty"`
	MaxSpend           *decimal.Decimal `json:"max_spend,omitempty"`
	DateJoinedBefore   *time.Time       `json:"date_joined_before,omitempty"`
	CreditCardType     *string          `json:"credit_card_type,omitempty"`
	LastLoginOption    *string          `json:"last_login_option,omitempty"` // "active" or "inactive"
	LastLoginThreshold *time.Time       `json:"last_login_threshold,omitempty"`
}

// Segment is a named, filter-defined group of customers.
type Segment struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Filter      SegmentFilter `json:"filter"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Campaign is a time-bounded promotion, optionally targeting a segment.
type Campaign struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Description     *string          `json:"description,omitempty"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	TargetSegmentID *int64           `json:"target_segment_id,omitempty"`
	DiscountType    string           `json:"discount_type"`
	DiscountValue   decimal.Decimal  `json:"discount_value"`
	MaxUsageLimit   *int             `json:"max_usage_limit,omitempty"`
	MinCartValue    *decimal.Decimal `json:"min_cart_value,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// IsActive reports whether the campaign window covers the given instant.
// Active is derived, never stored.
func (c *Campaign) IsActive(now time.Time) bool {
	return !now.Before(c.StartDate) && !now.After(c.EndDate)
}

// Voucher is a uniquely-coded discount instrument issued to one customer for
// one campaign. Its validity window is copied from the campaign at issuance
// time. Redemption (incrementing UsageCount) happens outside this service.
type Voucher struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	CampaignID int64     `json:"campaign_id"`
	CustomerID int64     `json:"customer_id"`
	StartDate  time.Time `json:"start_date"`
	ExpiryDate time.Time `json:"expiry_date"`
	UsageCount int       `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
}
