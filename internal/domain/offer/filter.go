package offer

import (
	"sort"
	"strings"
)

// KindFilter narrows a search to one catalog. KindAll matches everything.
type KindFilter string

const (
	KindAll         KindFilter = "all"
	KindBankOnly    KindFilter = "bank"
	KindPrivateOnly KindFilter = "private"
)

// SearchCriteria is the calculator-style filter: each bound is optional
// and an unset bound imposes no constraint. A nil pointer means unset;
// zero is a real value, never a pass-through.
type SearchCriteria struct {
	Kind            KindFilter
	MinAmount       *float64
	MaxInterestRate *float64
	MinTerm         *int
}

func (c SearchCriteria) matches(o Offer) bool {
	switch c.Kind {
	case KindBankOnly:
		if o.Kind != KindBank {
			return false
		}
	case KindPrivateOnly:
		if o.Kind != KindPrivate {
			return false
		}
	}
	if c.MinAmount != nil && o.Amount < *c.MinAmount {
		return false
	}
	if c.MaxInterestRate != nil && o.InterestRate > *c.MaxInterestRate {
		return false
	}
	if c.MinTerm != nil && o.TermMonths < *c.MinTerm {
		return false
	}
	return true
}

// Search filters offers against the criteria, preserving input order.
func Search(offers []Offer, criteria SearchCriteria) []Offer {
	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if criteria.matches(o) {
			out = append(out, o)
		}
	}
	return out
}

type SortKey string

const (
	SortByName   SortKey = "name"
	SortByAmount SortKey = "amount"
	SortByTerm   SortKey = "term"
	SortByRate   SortKey = "rate"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// CatalogQuery drives the catalog-browsing view: a case-insensitive
// substring text match on the display name, independent optional bounds on
// amount/term/rate, and a single-key sort. Ties keep input order, so the
// sort must be stable.
type CatalogQuery struct {
	SearchText string
	MinAmount  *float64
	MaxAmount  *float64
	MinTerm    *int
	MaxTerm    *int
	MinRate    *float64
	MaxRate    *float64
	SortBy     SortKey
	SortOrder  SortOrder
}

func (q CatalogQuery) matches(o Offer) bool {
	if q.SearchText != "" {
		needle := strings.ToLower(q.SearchText)
		if !strings.Contains(strings.ToLower(o.DisplayName()), needle) {
			return false
		}
	}
	if q.MinAmount != nil && o.Amount < *q.MinAmount {
		return false
	}
	if q.MaxAmount != nil && o.Amount > *q.MaxAmount {
		return false
	}
	if q.MinTerm != nil && o.TermMonths < *q.MinTerm {
		return false
	}
	if q.MaxTerm != nil && o.TermMonths > *q.MaxTerm {
		return false
	}
	if q.MinRate != nil && o.InterestRate < *q.MinRate {
		return false
	}
	if q.MaxRate != nil && o.InterestRate > *q.MaxRate {
		return false
	}
	return true
}

// Browse filters and then sorts offers for the catalog view.
func Browse(offers []Offer, query CatalogQuery) []Offer {
	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if query.matches(o) {
			out = append(out, o)
		}
	}

	less := lessFunc(query.SortBy)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if query.SortOrder == SortDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(key SortKey) func(a, b Offer) bool {
	switch key {
	case SortByName:
		return func(a, b Offer) bool {
			return strings.ToLower(a.DisplayName()) < strings.ToLower(b.DisplayName())
		}
	case SortByAmount:
		return func(a, b Offer) bool { return a.Amount < b.Amount }
	case SortByTerm:
		return func(a, b Offer) bool { return a.TermMonths < b.TermMonths }
	case SortByRate:
		return func(a, b Offer) bool { return a.InterestRate < b.InterestRate }
	default:
		return nil
	}
}
