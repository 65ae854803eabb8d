package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SegmentRequest is the DTO for creating or updating a segment.
// All filter fields are optional; omitted fields disable the predicate.
type SegmentRequest struct {
	Name               string           `json:"name" validate:"required,notblank,max=255"`
	Description        *string          `json:"description" validate:"omitempty,max=1024"`
	MinSpend           *decimal.Decimal `json:"min_spend" validate:"omitempty,gte=0"`
	MaxSpend           *decimal.Decimal `json:"max_spend" validate:"omitempty,gte=0"`
	DateJoinedBefore   *time.Time       `json:"date_joined_before"`
	CreditCardType     *string          `json:"credit_card_type" validate:"omitempty,notblank,max=64"`
	LastLoginOption    *string          `json:"last_login_option" validate:"omitempty,oneof=active inactive"`
	LastLoginThreshold *time.Time       `json:"last_login_threshold"`
}

// Filter extracts the segment filter value object from the request.
func (r *SegmentRequest) Filter() SegmentFilter {
	return SegmentFilter{
		MinSpend:           r.MinSpend,
		MaxSpend:           r.MaxSpend,
		DateJoinedBefore:   r.DateJoinedBefore,
		CreditCardType:     r.CreditCardType,
		LastLoginOption:    r.LastLoginOption,
		LastLoginThreshold: r.LastLoginThreshold,
	}
}

// CampaignRequest is the DTO for creating a campaign.
type CampaignRequest struct {
	Name            string           `json:"name" validate:"required,notblank,max=255"`
	Description     *string          `json:"description" validate:"omitempty,max=1024"`
	StartDate       *time.Time       `json:"start_date" validate:"required"`
	EndDate         *time.Time       `json:"end_date" validate:"required"`
	TargetSegmentID *int64           `json:"target_segment_id" validate:"omitempty,gt=0"`
	DiscountType    string           `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue   decimal.Decimal  `json:"discount_value" validate:"gt=0"`
	MaxUsageLimit   *int             `json:"max_usage_limit" validate:"omitempty,gte=1"`
	MinCartValue    *decimal.Decimal `json:"min_cart_value" validate:"omitempty,gte=0"`
}

// CampaignResponse is the API response DTO for campaign reads: the campaign
// together with every voucher issued for it.
type CampaignResponse struct {
	Campaign
	Vouchers []Voucher `json:"vouchers"`
}

// SegmentMembersResponse is the API response DTO for a segment's current
// membership.
type SegmentMembersResponse struct {
	SegmentID   int64   `json:"segment_id"`
	CustomerIDs []int64 `json:"customer_ids"`
}
