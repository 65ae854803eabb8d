package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/audience-voucher-system/internal/model"
	"github.com/fairyhunter13/audience-voucher-system/pkg/database"
)

// CampaignRepositoryInterface defines the interface for campaign data access.
type CampaignRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error
	GetByID(ctx context.Context, id int64) (*model.Campaign, error)
	List(ctx context.Context) ([]model.Campaign, error)
	Delete(ctx context.Context, id int64) error
}

// MembershipSnapshotter is the segment access the orchestrator needs: an
// existence check with a shared lock and a within-transaction membership
// snapshot.
type MembershipSnapshotter interface {
	ExistsForShare(ctx context.Context, tx database.TxQuerier, id int64) (bool, error)
	SnapshotMemberIDs(ctx context.Context, tx database.TxQuerier, segmentID int64) ([]int64, error)
}

// VoucherReader lists a campaign's issued vouchers.
type VoucherReader interface {
	ListByCampaign(ctx context.Context, campaignID int64) ([]model.Voucher, error)
}

// IssuerInterface defines the voucher issuance seam.
type IssuerInterface interface {
	Issue(ctx context.Context, tx pgx.Tx, campaignID int64, start, end time.Time, memberIDs []int64) ([]model.Voucher, error)
}

// CampaignService orchestrates the campaign lifecycle. Creating a campaign
// that targets a segment snapshots the segment's membership and issues one
// voucher per member, in the same transaction as the campaign row, so a
// reader never observes a campaign with issuance half done. Issuance happens
// exactly once, at creation; later membership changes never issue or revoke
// vouchers retroactively.
type CampaignService struct {
	pool      TxBeginner
	campaigns CampaignRepositoryInterface
	segments  MembershipSnapshotter
	vouchers  VoucherReader
	issuer    IssuerInterface
	timeout   time.Duration
}

// NewCampaignService creates a new CampaignService. timeout bounds every
// store operation; zero disables the bound.
func NewCampaignService(pool *pgxpool.Pool, campaigns CampaignRepositoryInterface, segments MembershipSnapshotter, vouchers VoucherReader, issuer IssuerInterface, timeout time.Duration) *CampaignService {
	return &CampaignService{pool: pool, campaigns: campaigns, segments: segments, vouchers: vouchers, issuer: issuer, timeout: timeout}
}

// NewCampaignServiceWithTxBeginner creates a CampaignService with a custom
// TxBeginner. Primarily used for testing.
func NewCampaignServiceWithTxBeginner(pool TxBeginner, campaigns CampaignRepositoryInterface, segments MembershipSnapshotter, vouchers VoucherReader, issuer IssuerInterface, timeout time.Duration) *CampaignService {
	return &CampaignService{pool: pool, campaigns: campaigns, segments: segments, vouchers: vouchers, issuer: issuer, timeout: timeout}
}

// Create persists a campaign and, when it targets a segment, issues vouchers
// to the segment's current members.
// Returns ErrInvalidWindow when the end date precedes the start date (checked
// before any write), ErrSegmentNotFound when the target segment doesn't
// exist, and ErrCodeExhausted when code generation ran out of retries (the
// whole creation rolls back; the caller may retry).
func (s *CampaignService) Create(ctx context.Context, req *model.CampaignRequest) (*model.CampaignResponse, error) {
	if req == nil || req.StartDate == nil || req.EndDate == nil {
		return nil, ErrInvalidRequest
	}
	if req.EndDate.Before(*req.StartDate) {
		return nil, ErrInvalidWindow
	}

	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	c := &model.Campaign{
		Name:            req.Name,
		Description:     req.Description,
		StartDate:       *req.StartDate,
		EndDate:         *req.EndDate,
		TargetSegmentID: req.TargetSegmentID,
		DiscountType:    req.DiscountType,
		DiscountValue:   req.DiscountValue,
		MaxUsageLimit:   req.MaxUsageLimit,
		MinCartValue:    req.MinCartValue,
	}
	if err := s.campaigns.Insert(ctx, tx, c); err != nil {
		return nil, err
	}

	vouchers := []model.Voucher{}
	if c.TargetSegmentID != nil {
		vouchers, err = s.issueForSegment(ctx, tx, c)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit campaign create: %w", err)
	}

	log.Info().
		Int64("campaign_id", c.ID).
		Int("vouchers_issued", len(vouchers)).
		Msg("campaign created")

	return &model.CampaignResponse{Campaign: *c, Vouchers: vouchers}, nil
}

func (s *CampaignService) issueForSegment(ctx context.Context, tx pgx.Tx, c *model.Campaign) ([]model.Voucher, error) {
	segmentID := *c.TargetSegmentID

	// Shared lock: concurrent campaigns may snapshot the same segment, but a
	// concurrent reconciliation cannot swap the membership mid-issuance.
	found, err := s.segments.ExistsForShare(ctx, tx, segmentID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSegmentNotFound
	}

	memberIDs, err := s.segments.SnapshotMemberIDs(ctx, tx, segmentID)
	if err != nil {
		return nil, err
	}

	return s.issuer.Issue(ctx, tx, c.ID, c.StartDate, c.EndDate, memberIDs)
}

// GetByID retrieves a campaign with every voucher issued for it.
// Returns ErrCampaignNotFound if the campaign doesn't exist.
func (s *CampaignService) GetByID(ctx context.Context, id int64) (*model.CampaignResponse, error) {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	if c == nil {
		return nil, ErrCampaignNotFound
	}

	vouchers, err := s.vouchers.ListByCampaign(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get vouchers: %w", err)
	}
	return &model.CampaignResponse{Campaign: *c, Vouchers: vouchers}, nil
}

// List retrieves all campaigns, each with its vouchers.
func (s *CampaignService) List(ctx context.Context) ([]model.CampaignResponse, error) {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	campaigns, err := s.campaigns.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]model.CampaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		vouchers, err := s.vouchers.ListByCampaign(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("get vouchers for campaign %d: %w", c.ID, err)
		}
		responses = append(responses, model.CampaignResponse{Campaign: c, Vouchers: vouchers})
	}
	return responses, nil
}

// Delete removes a campaign and every voucher issued for it, atomically.
// Returns ErrCampaignNotFound if the campaign doesn't exist.
func (s *CampaignService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.campaigns.Delete(ctx, id)
}
