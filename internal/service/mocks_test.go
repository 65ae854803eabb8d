package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/audience-voucher-system/internal/model"
	"github.com/fairyhunter13/audience-voucher-system/pkg/database"
)

// mockTx is a mock implementation of pgx.Tx for testing transactions.
// Begin returns a nested mockTx by default so savepoint-based code works.
type mockTx struct {
	beginFn    func(ctx context.Context) (pgx.Tx, error)
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

// mockSegmentRepository is a mock implementation of SegmentRepositoryInterface
// and MembershipSnapshotter.
type mockSegmentRepository struct {
	insertFn            func(ctx context.Context, tx database.TxQuerier, seg *model.Segment) error
	getForUpdateFn      func(ctx context.Context, tx database.TxQuerier, id int64) (*model.Segment, error)
	updateFn            func(ctx context.Context, tx database.TxQuerier, seg *model.Segment) error
	getByIDFn           func(ctx context.Context, id int64) (*model.Segment, error)
	listFn              func(ctx context.Context) ([]model.Segment, error)
	deleteFn            func(ctx context.Context, id int64) error
	replaceMembersFn    func(ctx context.Context, tx database.TxQuerier, segmentID int64, customerIDs []int64) error
	memberIDsFn         func(ctx context.Context, segmentID int64) ([]int64, error)
	existsForShareFn    func(ctx context.Context, tx database.TxQuerier, id int64) (bool, error)
	snapshotMemberIDsFn func(ctx context.Context, tx database.TxQuerier, segmentID int64) ([]int64, error)
}

func (m *mockSegmentRepository) Insert(ctx context.Context, tx database.TxQuerier, seg *model.Segment) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, seg)
	}
	seg.ID = 1
	return nil
}

func (m *mockSegmentRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Segment, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return &model.Segment{ID: id}, nil
}

func (m *mockSegmentRepository) Update(ctx context.Context, tx database.TxQuerier, seg *model.Segment) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, tx, seg)
	}
	return nil
}

func (m *mockSegmentRepository) GetByID(ctx context.Context, id int64) (*model.Segment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSegmentRepository) List(ctx context.Context) ([]model.Segment, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Segment{}, nil
}

func (m *mockSegmentRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockSegmentRepository) ReplaceMembers(ctx context.Context, tx database.TxQuerier, segmentID int64, customerIDs []int64) error {
	if m.replaceMembersFn != nil {
		return m.replaceMembersFn(ctx, tx, segmentID, customerIDs)
	}
	return nil
}

func (m *mockSegmentRepository) MemberIDs(ctx context.Context, segmentID int64) ([]int64, error) {
	if m.memberIDsFn != nil {
		return m.memberIDsFn(ctx, segmentID)
	}
	return []int64{}, nil
}

func (m *mockSegmentRepository) ExistsForShare(ctx context.Context, tx database.TxQuerier, id int64) (bool, error) {
	if m.existsForShareFn != nil {
		return m.existsForShareFn(ctx, tx, id)
	}
	return true, nil
}

func (m *mockSegmentRepository) SnapshotMemberIDs(ctx context.Context, tx database.TxQuerier, segmentID int64) ([]int64, error) {
	if m.snapshotMemberIDsFn != nil {
		return m.snapshotMemberIDsFn(ctx, tx, segmentID)
	}
	return []int64{}, nil
}

// mockCustomerRepository is a mock implementation of CustomerRepositoryInterface.
type mockCustomerRepository struct {
	findMatchingFn func(ctx context.Context, q database.TxQuerier, filter model.SegmentFilter) ([]int64, error)
}

func (m *mockCustomerRepository) FindMatching(ctx context.Context, q database.TxQuerier, filter model.SegmentFilter) ([]int64, error) {
	if m.findMatchingFn != nil {
		return m.findMatchingFn(ctx, q, filter)
	}
	return []int64{}, nil
}

// mockCampaignRepository is a mock implementation of CampaignRepositoryInterface.
type mockCampaignRepository struct {
	insertFn  func(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error
	getByIDFn func(ctx context.Context, id int64) (*model.Campaign, error)
	listFn    func(ctx context.Context) ([]model.Campaign, error)
	deleteFn  func(ctx context.Context, id int64) error
}

func (m *mockCampaignRepository) Insert(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, c)
	}
	c.ID = 1
	return nil
}

func (m *mockCampaignRepository) GetByID(ctx context.Context, id int64) (*model.Campaign, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCampaignRepository) List(ctx context.Context) ([]model.Campaign, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Campaign{}, nil
}

func (m *mockCampaignRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockVoucherReader is a mock implementation of VoucherReader.
type mockVoucherReader struct {
	listByCampaignFn func(ctx context.Context, campaignID int64) ([]model.Voucher, error)
}

func (m *mockVoucherReader) ListByCampaign(ctx context.Context, campaignID int64) ([]model.Voucher, error) {
	if m.listByCampaignFn != nil {
		return m.listByCampaignFn(ctx, campaignID)
	}
	return []model.Voucher{}, nil
}

// mockVoucherInserter is a mock implementation of VoucherInserter.
type mockVoucherInserter struct {
	insertFn func(ctx context.Context, tx database.TxQuerier, v *model.Voucher) error
}

func (m *mockVoucherInserter) Insert(ctx context.Context, tx database.TxQuerier, v *model.Voucher) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, v)
	}
	return nil
}

// mockIssuer is a mock implementation of IssuerInterface.
type mockIssuer struct {
	issueFn func(ctx context.Context, tx pgx.Tx, campaignID int64, start, end time.Time, memberIDs []int64) ([]model.Voucher, error)
}

func (m *mockIssuer) Issue(ctx context.Context, tx pgx.Tx, campaignID int64, start, end time.Time, memberIDs []int64) ([]model.Voucher, error) {
	if m.issueFn != nil {
		return m.issueFn(ctx, tx, campaignID, start, end, memberIDs)
	}
	return []model.Voucher{}, nil
}
