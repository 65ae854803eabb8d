// Package matcher compiles a segment filter into a SQL conjunction over the
// customer store. The filter is a plain value object, so compilation is pure
// and testable without a database.
package matcher

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/audience-voucher-system/internal/model"
)

// Query is a compiled WHERE clause with positional arguments.
type Query struct {
	Where string
	Args  []any
}

// Build compiles the filter into a conjunction of its present predicates.
// A predicate is present when its optional field is non-nil; the last-login
// predicate additionally requires both the option and the threshold.
//
// ok is false when no predicate is present. An empty filter matches no one,
// so callers must return the empty set without querying the store.
func Build(f model.SegmentFilter) (Query, bool) {
	var conds []string
	var args []any

	add := func(format string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if f.MinSpend != nil {
		add("total_spend >= $%d", *f.MinSpend)
	}
	if f.MaxSpend != nil {
		add("total_spend <= $%d", *f.MaxSpend)
	}
	if f.DateJoinedBefore != nil {
		add("date_joined <= $%d", *f.DateJoinedBefore)
	}
	if f.CreditCardType != nil {
		add("credit_card_type = $%d", *f.CreditCardType)
	}
	if f.LastLoginOption != nil && f.LastLoginThreshold != nil {
		switch *f.LastLoginOption {
		case model.LastLoginActive:
			add("last_login >= $%d", *f.LastLoginThreshold)
		case model.LastLoginInactive:
			add("last_login <= $%d", *f.LastLoginThreshold)
		}
	}

	if len(conds) == 0 {
		return Query{}, false
	}
	return Query{Where: strings.Join(conds, " AND "), Args: args}, true
}
