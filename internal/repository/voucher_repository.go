package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/audience-voucher-system/internal/model"
	"github.com/fairyhunter13/audience-voucher-system/internal/service"
	"github.com/fairyhunter13/audience-voucher-system/pkg/database"
)

// Unique constraints on the vouchers table. The code index is the source of
// truth for global code uniqueness; the pair index enforces at most one
// voucher per (campaign, customer).
const (
	voucherCodeConstraint = "vouchers_code_key"
	voucherPairConstraint = "vouchers_campaign_id_customer_id_key"
)

// VoucherRepository provides data access for vouchers using pgx.
type VoucherRepository struct {
	pool PoolInterface
}

// NewVoucherRepository creates a new VoucherRepository with the given pool.
func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

// NewVoucherRepositoryWithPool creates a new VoucherRepository with a custom
// pool interface. This is primarily used for testing.
func NewVoucherRepositoryWithPool(pool PoolInterface) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

// Insert inserts a new voucher within a transaction and fills in its
// generated ID and creation timestamp.
// Returns service.ErrCodeCollision when the generated code already exists and
// service.ErrVoucherExists when the (campaign, customer) pair already holds a
// voucher.
func (r *VoucherRepository) Insert(ctx context.Context, tx database.TxQuerier, v *model.Voucher) error {
	query := `INSERT INTO vouchers (code, campaign_id, customer_id, start_date, expiry_date, usage_count)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING id, created_at`

	err := tx.QueryRow(ctx, query,
		v.Code, v.CampaignID, v.CustomerID, v.StartDate, v.ExpiryDate,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case voucherCodeConstraint:
				return service.ErrCodeCollision
			case voucherPairConstraint:
				return service.ErrVoucherExists
			}
		}
		return fmt.Errorf("insert voucher: %w", err)
	}
	v.UsageCount = 0
	return nil
}

// ListByCampaign retrieves all vouchers issued for a campaign ordered by ID.
func (r *VoucherRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]model.Voucher, error) {
	query := `SELECT id, code, campaign_id, customer_id, start_date, expiry_date, usage_count, created_at
		FROM vouchers WHERE campaign_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list vouchers for campaign %d: %w", campaignID, err)
	}
	defer rows.Close()

	vouchers := []model.Voucher{}
	for rows.Next() {
		var v model.Voucher
		err := rows.Scan(&v.ID, &v.Code, &v.CampaignID, &v.CustomerID,
			&v.StartDate, &v.ExpiryDate, &v.UsageCount, &v.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan voucher row: %w", err)
		}
		vouchers = append(vouchers, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voucher rows: %w", err)
	}
	return vouchers, nil
}
