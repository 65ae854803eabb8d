package repository

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/audience-voucher-system/internal/matcher"
	"github.com/fairyhunter13/audience-voucher-system/internal/model"
	"github.com/fairyhunter13/audience-voucher-system/pkg/database"
)

// CustomerRepository is the read-only query surface over the customer store.
// Customer attributes are owned and mutated by external systems.
type CustomerRepository struct{}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{}
}

// FindMatching returns the IDs of every customer matching the filter,
// evaluated through q (a pool or an open transaction, so reconciliation can
// snapshot inside its own transaction).
//
// A filter with zero present predicates matches no one: the store is not
// queried and an empty slice is returned.
func (r *CustomerRepository) FindMatching(ctx context.Context, q database.TxQuerier, filter model.SegmentFilter) ([]int64, error) {
	compiled, ok := matcher.Build(filter)
	if !ok {
		return []int64{}, nil
	}

	query := "SELECT id FROM customers WHERE " + compiled.Where + " ORDER BY id"

	rows, err := q.Query(ctx, query, compiled.Args...)
	if err != nil {
		return nil, fmt.Errorf("find matching customers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan customer id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	// Return empty slice, not nil
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
