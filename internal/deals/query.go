package deals

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/dealflow/internal/model"
)

// SortOrder selects how a Query orders deals.
type SortOrder string

// Supported sort orders.
const (
	SortAmountDesc SortOrder = "amount-desc"
	SortAmountAsc  SortOrder = "amount-asc"
	SortNameAsc    SortOrder = "name-asc"
	SortNameDesc   SortOrder = "name-desc"
)

// SizeBucket groups deals by amount.
type SizeBucket string

// Supported size buckets. Bounds are inclusive below and exclusive above.
const (
	SizeAll    SizeBucket = ""
	SizeSmall  SizeBucket = "<1000"
	SizeMedium SizeBucket = "1000-5000"
	SizeLarge  SizeBucket = "5000-10000"
	SizeXLarge SizeBucket = ">10000"
)

// DefaultPerPage is the page size used when a Query does not set one.
const DefaultPerPage = 10

var (
	thousand    = decimal.NewFromInt(1000)
	fiveK       = decimal.NewFromInt(5000)
	tenThousand = decimal.NewFromInt(10000)
)

// Query filters, sorts and paginates a deal list.
type Query struct {
	Stage   string
	Size    SizeBucket
	Sort    SortOrder
	Page    int
	PerPage int
}

// Page is one page of query results.
type Page struct {
	Deals      []model.Deal
	Total      int
	Page       int
	TotalPages int
}

// Validate rejects unknown sort orders and size buckets.
func (q Query) Validate() error {
	switch q.Sort {
	case "", SortAmountDesc, SortAmountAsc, SortNameAsc, SortNameDesc:
	default:
		return fmt.Errorf("unknown sort order %q", q.Sort)
	}
	switch q.Size {
	case SizeAll, SizeSmall, SizeMedium, SizeLarge, SizeXLarge:
	default:
		return fmt.Errorf("unknown size bucket %q", q.Size)
	}
	return nil
}

// ParseAmount reads a currency-formatted amount such as "$12,500.00".
// Anything that does not parse, including "N/A", counts as zero.
func ParseAmount(amount string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, amount)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// InBucket reports whether amount falls within bucket.
func InBucket(amount decimal.Decimal, bucket SizeBucket) bool {
	switch bucket {
	case SizeSmall:
		return amount.LessThan(thousand)
	case SizeMedium:
		return amount.GreaterThanOrEqual(thousand) && amount.LessThan(fiveK)
	case SizeLarge:
		return amount.GreaterThanOrEqual(fiveK) && amount.LessThan(tenThousand)
	case SizeXLarge:
		return amount.GreaterThanOrEqual(tenThousand)
	default:
		return true
	}
}

// Apply runs q over deals. The input slice is not modified.
func (q Query) Apply(deals []model.Deal) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}

	filtered := make([]model.Deal, 0, len(deals))
	for _, d := range deals {
		if q.Stage != "" && d.Stage != q.Stage {
			continue
		}
		if !InBucket(ParseAmount(d.Amount), q.Size) {
			continue
		}
		filtered = append(filtered, d)
	}

	sortDeals(filtered, q.Sort)

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	totalPages := (len(filtered) + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Deals:      filtered[start:end],
		Total:      len(filtered),
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// Query runs q over the model's deals.
func (m *Model) Query(q Query) (Page, error) {
	return q.Apply(m.Deals())
}

func sortDeals(deals []model.Deal, order SortOrder) {
	var less func(a, b model.Deal) bool
	switch order {
	case SortAmountAsc:
		less = func(a, b model.Deal) bool { return ParseAmount(a.Amount).LessThan(ParseAmount(b.Amount)) }
	case SortNameAsc:
		less = func(a, b model.Deal) bool { return strings.ToLower(a.DealName) < strings.ToLower(b.DealName) }
	case SortNameDesc:
		less = func(a, b model.Deal) bool { return strings.ToLower(a.DealName) > strings.ToLower(b.DealName) }
	default:
		less = func(a, b model.Deal) bool { return ParseAmount(a.Amount).GreaterThan(ParseAmount(b.Amount)) }
	}
	sort.SliceStable(deals, func(i, j int) bool { return less(deals[i], deals[j]) })
}
