package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/audience-voucher-system/internal/model"
	"github.com/fairyhunter13/audience-voucher-system/pkg/database"
)

// SegmentRepositoryInterface defines the interface for segment data access.
type SegmentRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, seg *model.Segment) error
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Segment, error)
	Update(ctx context.Context, tx database.TxQuerier, seg *model.Segment) error
	GetByID(ctx context.Context, id int64) (*model.Segment, error)
	List(ctx context.Context) ([]model.Segment, error)
	Delete(ctx context.Context, id int64) error
	ReplaceMembers(ctx context.Context, tx database.TxQuerier, segmentID int64, customerIDs []int64) error
	MemberIDs(ctx context.Context, segmentID int64) ([]int64, error)
}

// CustomerRepositoryInterface defines the interface for the customer store's
// single query primitive.
type CustomerRepositoryInterface interface {
	FindMatching(ctx context.Context, q database.TxQuerier, filter model.SegmentFilter) ([]int64, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SegmentService owns the segment lifecycle and its membership edge set.
// Every create or update reconciles membership: the full edge set is replaced
// with the customers matching the new filter, in one transaction, serialized
// per segment by a row lock.
type SegmentService struct {
	pool      TxBeginner
	segments  SegmentRepositoryInterface
	customers CustomerRepositoryInterface
	timeout   time.Duration
}

// NewSegmentService creates a new SegmentService. timeout bounds every store
// operation; zero disables the bound.
func NewSegmentService(pool *pgxpool.Pool, segments SegmentRepositoryInterface, customers CustomerRepositoryInterface, timeout time.Duration) *SegmentService {
	return &SegmentService{pool: pool, segments: segments, customers: customers, timeout: timeout}
}

// NewSegmentServiceWithTxBeginner creates a SegmentService with a custom
// TxBeginner. Primarily used for testing.
func NewSegmentServiceWithTxBeginner(pool TxBeginner, segments SegmentRepositoryInterface, customers CustomerRepositoryInterface, timeout time.Duration) *SegmentService {
	return &SegmentService{pool: pool, segments: segments, customers: customers, timeout: timeout}
}

// Create persists a new segment and materializes its membership from the
// filter, atomically.
func (s *SegmentService) Create(ctx context.Context, req *model.SegmentRequest) (*model.Segment, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	seg := &model.Segment{
		Name:        req.Name,
		Description: req.Description,
		Filter:      req.Filter(),
	}
	if err := s.segments.Insert(ctx, tx, seg); err != nil {
		return nil, err
	}

	// The freshly inserted row is invisible to other transactions until
	// commit, so no explicit lock is needed here.
	if err := s.reconcile(ctx, tx, seg.ID, seg.Filter); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit segment create: %w", err)
	}
	return seg, nil
}

// Update rewrites a segment's definition and reconciles its membership,
// atomically. The row lock taken by GetForUpdate serializes concurrent
// updates of the same segment.
// Returns ErrSegmentNotFound if the segment doesn't exist.
func (s *SegmentService) Update(ctx context.Context, id int64, req *model.SegmentRequest) (*model.Segment, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	seg, err := s.segments.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	seg.Name = req.Name
	seg.Description = req.Description
	seg.Filter = req.Filter()

	if err := s.segments.Update(ctx, tx, seg); err != nil {
		return nil, err
	}
	if err := s.reconcile(ctx, tx, seg.ID, seg.Filter); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit segment update: %w", err)
	}
	return seg, nil
}

// reconcile recomputes the membership for a filter and replaces the
// segment's edge set with the result. Runs entirely on the caller's
// transaction: the matcher query, the delete and the insert commit or roll
// back as one unit. Re-running with an unchanged filter and unchanged
// customer attributes yields the same edge set.
func (s *SegmentService) reconcile(ctx context.Context, tx pgx.Tx, segmentID int64, filter model.SegmentFilter) error {
	memberIDs, err := s.customers.FindMatching(ctx, tx, filter)
	if err != nil {
		return fmt.Errorf("match segment %d: %w", segmentID, err)
	}
	if err := s.segments.ReplaceMembers(ctx, tx, segmentID, memberIDs); err != nil {
		return fmt.Errorf("reconcile segment %d: %w", segmentID, err)
	}
	return nil
}

// GetByID retrieves a segment.
// Returns ErrSegmentNotFound if the segment doesn't exist.
func (s *SegmentService) GetByID(ctx context.Context, id int64) (*model.Segment, error) {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	seg, err := s.segments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get segment: %w", err)
	}
	if seg == nil {
		return nil, ErrSegmentNotFound
	}
	return seg, nil
}

// List retrieves all segments.
func (s *SegmentService) List(ctx context.Context) ([]model.Segment, error) {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.segments.List(ctx)
}

// MemberIDs retrieves the current membership of a segment.
// Returns ErrSegmentNotFound if the segment doesn't exist.
func (s *SegmentService) MemberIDs(ctx context.Context, id int64) ([]int64, error) {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	seg, err := s.segments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get segment: %w", err)
	}
	if seg == nil {
		return nil, ErrSegmentNotFound
	}
	return s.segments.MemberIDs(ctx, id)
}

// Delete removes a segment and its membership edges. Campaigns that targeted
// the segment keep their issued vouchers; they only lose the ability to
// issue new ones.
// Returns ErrSegmentNotFound if the segment doesn't exist.
func (s *SegmentService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := database.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.segments.Delete(ctx, id)
}
