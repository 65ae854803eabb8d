package service

import "errors"

var (
	// ErrSegmentNotFound is returned when a segment cannot be found
	ErrSegmentNotFound = errors.New("segment not found")

	// ErrCampaignNotFound is returned when a campaign cannot be found
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidWindow is returned when a campaign's end date precedes its start date
	ErrInvalidWindow = errors.New("campaign end date precedes start date")

	// ErrCodeCollision is returned by the voucher repository when a generated
	// code already exists somewhere in the voucher table. The issuer retries
	// with a fresh draw.
	ErrCodeCollision = errors.New("voucher code already exists")

	// ErrVoucherExists is returned when a voucher for the same
	// (campaign, customer) pair already exists
	ErrVoucherExists = errors.New("voucher already issued for this campaign and customer")

	// ErrCodeExhausted is returned when voucher code generation ran out of
	// retry attempts. The whole issuance fails; the caller may retry the
	// operation.
	ErrCodeExhausted = errors.New("voucher code generation exhausted its retry budget")
)
