package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/audience-voucher-system/internal/model"
	"github.com/fairyhunter13/audience-voucher-system/internal/service"
	"github.com/fairyhunter13/audience-voucher-system/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const segmentColumns = `id, name, description, min_spend, max_spend, date_joined_before,
	credit_card_type, last_login_option, last_login_threshold, created_at, updated_at`

// SegmentRepository provides data access for segments and their membership
// edges using pgx.
type SegmentRepository struct {
	pool PoolInterface
}

// NewSegmentRepository creates a new SegmentRepository with the given pool.
func NewSegmentRepository(pool *pgxpool.Pool) *SegmentRepository {
	return &SegmentRepository{pool: pool}
}

// NewSegmentRepositoryWithPool creates a new SegmentRepository with a custom
// pool interface. This is primarily used for testing.
func NewSegmentRepositoryWithPool(pool PoolInterface) *SegmentRepository {
	return &SegmentRepository{pool: pool}
}

func scanSegment(row pgx.Row) (*model.Segment, error) {
	var seg model.Segment
	err := row.Scan(
		&seg.ID,
		&seg.Name,
		&seg.Description,
		&seg.Filter.MinSpend,
		&seg.Filter.MaxSpend,
		&seg.Filter.DateJoinedBefore,
		&seg.Filter.CreditCardType,
		&seg.Filter.LastLoginOption,
		&seg.Filter.LastLoginThreshold,
		&seg.CreatedAt,
		&seg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &seg, nil
}

// Insert inserts a new segment within a transaction and fills in its
// generated ID and timestamps.
func (r *SegmentRepository) Insert(ctx context.Context, tx database.TxQuerier, seg *model.Segment) error {
	query := `INSERT INTO segments
		(name, description, min_spend, max_spend, date_joined_before,
		 credit_card_type, last_login_option, last_login_threshold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	f := seg.Filter
	err := tx.QueryRow(ctx, query,
		seg.Name, seg.Description, f.MinSpend, f.MaxSpend, f.DateJoinedBefore,
		f.CreditCardType, f.LastLoginOption, f.LastLoginThreshold,
	).Scan(&seg.ID, &seg.CreatedAt, &seg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert segment: %w", err)
	}
	return nil
}

// GetForUpdate retrieves a segment with a row lock (SELECT FOR UPDATE). The
// lock serializes reconciliations of the same segment; different segments
// reconcile in parallel.
// Returns service.ErrSegmentNotFound if the segment doesn't exist.
func (r *SegmentRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Segment, error) {
	query := `SELECT ` + segmentColumns + ` FROM segments WHERE id = $1 FOR UPDATE`

	seg, err := scanSegment(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrSegmentNotFound
		}
		return nil, fmt.Errorf("get segment %d for update: %w", id, err)
	}
	return seg, nil
}

// Update rewrites a segment's name, description and filter definition within
// a transaction. The caller must hold the row lock via GetForUpdate.
func (r *SegmentRepository) Update(ctx context.Context, tx database.TxQuerier, seg *model.Segment) error {
	query := `UPDATE segments SET
		name = $2, description = $3, min_spend = $4, max_spend = $5,
		date_joined_before = $6, credit_card_type = $7,
		last_login_option = $8, last_login_threshold = $9,
		updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	f := seg.Filter
	err := tx.QueryRow(ctx, query,
		seg.ID, seg.Name, seg.Description, f.MinSpend, f.MaxSpend,
		f.DateJoinedBefore, f.CreditCardType, f.LastLoginOption, f.LastLoginThreshold,
	).Scan(&seg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrSegmentNotFound
		}
		return fmt.Errorf("update segment %d: %w", seg.ID, err)
	}
	return nil
}

// GetByID retrieves a segment by ID.
// Returns nil, nil if the segment is not found (service layer handles this).
func (r *SegmentRepository) GetByID(ctx context.Context, id int64) (*model.Segment, error) {
	query := `SELECT ` + segmentColumns + ` FROM segments WHERE id = $1`

	seg, err := scanSegment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get segment %d: %w", id, err)
	}
	return seg, nil
}

// List retrieves all segments ordered by ID.
func (r *SegmentRepository) List(ctx context.Context) ([]model.Segment, error) {
	query := `SELECT ` + segmentColumns + ` FROM segments ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	segments := []model.Segment{}
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan segment row: %w", err)
		}
		segments = append(segments, *seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segment rows: %w", err)
	}
	return segments, nil
}

// Delete removes a segment. Its membership edges cascade away at the store
// level; campaigns that targeted it survive with target_segment_id nulled.
// Returns service.ErrSegmentNotFound if the segment doesn't exist.
func (r *SegmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM segments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete segment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrSegmentNotFound
	}
	return nil
}

// ReplaceMembers atomically replaces the full membership edge set of a
// segment with the given customer IDs. Both phases run on the caller's
// transaction; a failure after the delete leaves nothing committed.
func (r *SegmentRepository) ReplaceMembers(ctx context.Context, tx database.TxQuerier, segmentID int64, customerIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM memberships WHERE segment_id = $1`, segmentID); err != nil {
		return fmt.Errorf("clear memberships for segment %d: %w", segmentID, err)
	}

	if len(customerIDs) == 0 {
		return nil
	}

	query := `INSERT INTO memberships (segment_id, customer_id)
		SELECT $1, unnest($2::bigint[])`
	if _, err := tx.Exec(ctx, query, segmentID, customerIDs); err != nil {
		return fmt.Errorf("insert memberships for segment %d: %w", segmentID, err)
	}
	return nil
}

// MemberIDs retrieves the current membership of a segment ordered by
// customer ID.
func (r *SegmentRepository) MemberIDs(ctx context.Context, segmentID int64) ([]int64, error) {
	return memberIDs(ctx, r.pool, segmentID)
}

// SnapshotMemberIDs retrieves the membership of a segment inside the caller's
// transaction, so campaign issuance and its membership snapshot share one
// transactional view.
func (r *SegmentRepository) SnapshotMemberIDs(ctx context.Context, tx database.TxQuerier, segmentID int64) ([]int64, error) {
	return memberIDs(ctx, tx, segmentID)
}

// ExistsForShare checks that a segment exists and takes a shared row lock on
// it for the duration of the transaction. The shared lock lets concurrent
// campaigns snapshot the same segment while blocking a concurrent
// reconciliation from swapping the membership mid-issuance.
func (r *SegmentRepository) ExistsForShare(ctx context.Context, tx database.TxQuerier, id int64) (bool, error) {
	var found int
	err := tx.QueryRow(ctx, `SELECT 1 FROM segments WHERE id = $1 FOR SHARE`, id).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lock segment %d: %w", id, err)
	}
	return true, nil
}

func memberIDs(ctx context.Context, q database.TxQuerier, segmentID int64) ([]int64, error) {
	rows, err := q.Query(ctx,
		`SELECT customer_id FROM memberships WHERE segment_id = $1 ORDER BY customer_id`, segmentID)
	if err != nil {
		return nil, fmt.Errorf("get members for segment %d: %w", segmentID, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan membership customer_id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate membership rows: %w", err)
	}
	return ids, nil
}
