package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/audience-voucher-system/internal/model"
	"github.com/fairyhunter13/audience-voucher-system/pkg/database"
)

const (
	codePrefix   = "COUPON-"
	codeLength   = 8
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds regeneration after a unique-index collision.
	// An 8-char base-36 token has ~2.8e12 combinations, so collisions are
	// rare; the bound exists for correctness, not because it is expected
	// to trigger.
	maxCodeAttempts = 5
)

// VoucherInserter is the voucher persistence seam the issuer needs.
type VoucherInserter interface {
	Insert(ctx context.Context, tx database.TxQuerier, voucher *model.Voucher) error
}

// VoucherIssuer creates one voucher per segment member for a campaign,
// generating globally unique codes. The database unique index on the code
// column is the source of truth for uniqueness; the retry loop only reduces
// wasted attempts.
type VoucherIssuer struct {
	vouchers VoucherInserter
	codeFn   func() (string, error)
}

// NewVoucherIssuer creates a VoucherIssuer backed by crypto/rand codes.
func NewVoucherIssuer(vouchers VoucherInserter) *VoucherIssuer {
	return &VoucherIssuer{vouchers: vouchers, codeFn: GenerateCode}
}

// NewVoucherIssuerWithCodeFn creates a VoucherIssuer with a custom code
// generator. Primarily used for testing collision handling.
func NewVoucherIssuerWithCodeFn(vouchers VoucherInserter, codeFn func() (string, error)) *VoucherIssuer {
	return &VoucherIssuer{vouchers: vouchers, codeFn: codeFn}
}

// GenerateCode returns a voucher code: the "COUPON-" tag followed by 8
// uppercase base-36 characters drawn from crypto/rand.
func GenerateCode() (string, error) {
	buf := make([]byte, 0, len(codePrefix)+codeLength)
	buf = append(buf, codePrefix...)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("draw code char: %w", err)
		}
		buf = append(buf, codeAlphabet[n.Int64()])
	}
	return string(buf), nil
}

// Issue creates one voucher per member within the caller's transaction. The
// validity window is copied from the campaign. Each insert runs inside a
// savepoint so a code collision rolls back only that insert; the code is then
// regenerated, up to maxCodeAttempts times, before the issuance fails with
// ErrCodeExhausted.
//
// At most one voucher is created per (campaign, member) pair: members that
// already hold a voucher for the campaign are skipped, which makes Issue safe
// to re-run after a retryable failure.
func (i *VoucherIssuer) Issue(ctx context.Context, tx pgx.Tx, campaignID int64, start, end time.Time, memberIDs []int64) ([]model.Voucher, error) {
	vouchers := make([]model.Voucher, 0, len(memberIDs))

	for _, memberID := range memberIDs {
		voucher, err := i.issueOne(ctx, tx, campaignID, start, end, memberID)
		if err != nil {
			return nil, err
		}
		if voucher != nil {
			vouchers = append(vouchers, *voucher)
		}
	}
	return vouchers, nil
}

func (i *VoucherIssuer) issueOne(ctx context.Context, tx pgx.Tx, campaignID int64, start, end time.Time, memberID int64) (*model.Voucher, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := i.codeFn()
		if err != nil {
			return nil, fmt.Errorf("generate voucher code: %w", err)
		}

		voucher := &model.Voucher{
			Code:       code,
			CampaignID: campaignID,
			CustomerID: memberID,
			StartDate:  start,
			ExpiryDate: end,
		}

		// Savepoint: a failed insert aborts the surrounding pg transaction
		// otherwise.
		sp, err := tx.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin savepoint: %w", err)
		}

		err = i.vouchers.Insert(ctx, sp, voucher)
		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return nil, fmt.Errorf("release savepoint: %w", err)
			}
			return voucher, nil
		}

		_ = sp.Rollback(ctx)

		if errors.Is(err, ErrCodeCollision) {
			continue // fresh draw
		}
		if errors.Is(err, ErrVoucherExists) {
			return nil, nil // pair already covered
		}
		return nil, fmt.Errorf("insert voucher for customer %d: %w", memberID, err)
	}
	return nil, ErrCodeExhausted
}
