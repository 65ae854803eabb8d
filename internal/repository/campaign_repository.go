package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/audience-voucher-system/internal/model"
	"github.com/fairyhunter13/audience-voucher-system/internal/service"
	"github.com/fairyhunter13/audience-voucher-system/pkg/database"
)

const campaignColumns = `id, name, description, start_date, end_date, target_segment_id,
	discount_type, discount_value, max_usage_limit, min_cart_value, created_at`

// CampaignRepository provides data access for campaigns using pgx.
type CampaignRepository struct {
	pool PoolInterface
}

// NewCampaignRepository creates a new CampaignRepository with the given pool.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// NewCampaignRepositoryWithPool creates a new CampaignRepository with a custom
// pool interface. This is primarily used for testing.
func NewCampaignRepositoryWithPool(pool PoolInterface) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

func scanCampaign(row pgx.Row) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.StartDate,
		&c.EndDate,
		&c.TargetSegmentID,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MaxUsageLimit,
		&c.MinCartValue,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert inserts a new campaign within a transaction and fills in its
// generated ID and creation timestamp.
func (r *CampaignRepository) Insert(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error {
	query := `INSERT INTO campaigns
		(name, description, start_date, end_date, target_segment_id,
		 discount_type, discount_value, max_usage_limit, min_cart_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := tx.QueryRow(ctx, query,
		c.Name, c.Description, c.StartDate, c.EndDate, c.TargetSegmentID,
		c.DiscountType, c.DiscountValue, c.MaxUsageLimit, c.MinCartValue,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// GetByID retrieves a campaign by ID.
// Returns nil, nil if the campaign is not found (service layer handles this).
func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	c, err := scanCampaign(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get campaign %d: %w", id, err)
	}
	return c, nil
}

// List retrieves all campaigns ordered by ID.
func (r *CampaignRepository) List(ctx context.Context) ([]model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign row: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaign rows: %w", err)
	}
	return campaigns, nil
}

// Delete removes a campaign and, through the store-level cascade, every
// voucher issued for it in the same atomic statement.
// Returns service.ErrCampaignNotFound if the campaign doesn't exist.
func (r *CampaignRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCampaignNotFound
	}
	return nil
}
