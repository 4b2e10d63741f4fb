package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/format"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
)

// NothingToFilter is reported in place of rows when FilterCheapest leaves
// nothing.
const NothingToFilter = "No valid rows to filter"

// FilterCheapest keeps, for each (input_type, region) pair, the row with the
// lowest candidate_monthly. The first row wins a tie and groups are returned
// sorted by input type, then region. Rows without an input type, a region or a
// parseable candidate price are dropped. ok is false when nothing is left.
func FilterCheapest(results []models.ComparisonResult) (filtered []models.ComparisonResult, ok bool) {
	type key struct{ inputType, region string }
	type best struct {
		row   models.ComparisonResult
		price decimal.Decimal
	}

	var order []key
	groups := make(map[key]*best)
	for _, r := range results {
		if r.InputType == "" || r.Region == "" || r.CandidateMonthly == "" {
			continue
		}
		price, err := format.ParseCurrency(r.CandidateMonthly)
		if err != nil {
			continue
		}
		k := key{r.InputType, r.Region}
		b, seen := groups[k]
		if !seen {
			order = append(order, k)
			groups[k] = &best{row: r, price: price}
			continue
		}
		if price.LessThan(b.price) {
			b.row, b.price = r, price
		}
	}

	if len(order) == 0 {
		return nil, false
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].inputType != order[j].inputType {
			return order[i].inputType < order[j].inputType
		}
		return order[i].region < order[j].region
	})
	filtered = make([]models.ComparisonResult, 0, len(order))
	for _, k := range order {
		filtered = append(filtered, groups[k].row)
	}
	return filtered, true
}
