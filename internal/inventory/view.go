package inventory

import (
	"fmt"
	"sort"
	"strings"

	"farmdash/internal/farm"
)

// StatusFilter narrows the crop list to one status. The zero value and
// FilterAll keep everything.
type StatusFilter string

const FilterAll StatusFilter = "all"

// StatusFilters lists filters in cycling order.
var StatusFilters = []StatusFilter{FilterAll, StatusFilter(farm.CropAvailable), StatusFilter(farm.CropSoldOut)}

func ParseStatusFilter(s string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "available":
		return StatusFilter(farm.CropAvailable), nil
	case "sold-out", "sold out", "soldout", "sold_out":
		return StatusFilter(farm.CropSoldOut), nil
	}
	return "", fmt.Errorf("unknown status filter %q (want all, available or sold-out)", s)
}

func (f StatusFilter) Next() StatusFilter {
	for i, v := range StatusFilters {
		if v == f {
			return StatusFilters[(i+1)%len(StatusFilters)]
		}
	}
	return StatusFilters[1]
}

func (f StatusFilter) keep(c farm.Crop) bool {
	if f == "" || f == FilterAll {
		return true
	}
	return string(c.Status) == string(f)
}

type SortKey string

const (
	SortNone      SortKey = "none"
	SortQtyDesc   SortKey = "qty-desc"
	SortQtyAsc    SortKey = "qty-asc"
	SortPriceDesc SortKey = "price-desc"
	SortPriceAsc  SortKey = "price-asc"
)

// SortKeys lists sort keys in cycling order.
var SortKeys = []SortKey{SortNone, SortQtyDesc, SortQtyAsc, SortPriceDesc, SortPriceAsc}

func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "qty-desc", "quantity-desc":
		return SortQtyDesc, nil
	case "qty-asc", "quantity-asc":
		return SortQtyAsc, nil
	case "price-desc":
		return SortPriceDesc, nil
	case "price-asc":
		return SortPriceAsc, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

func (k SortKey) Next() SortKey {
	for i, v := range SortKeys {
		if v == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortKeys[1]
}

// less reports whether a sorts before b under k. It returns false for every
// pair when k does not order crops, which leaves a stable sort untouched.
func (k SortKey) less(a, b farm.Crop) bool {
	switch k {
	case SortQtyDesc:
		return a.Quantity > b.Quantity
	case SortQtyAsc:
		return a.Quantity < b.Quantity
	case SortPriceDesc:
		return a.Price > b.Price
	case SortPriceAsc:
		return a.Price < b.Price
	}
	return false
}

type CropQuery struct {
	Search string
	Status StatusFilter
	Sort   SortKey
}

type OrderQuery struct {
	Search string
}

// ProjectCrops derives the displayed crop list: status filter, then search,
// then a stable sort. The input is never modified.
func ProjectCrops(crops []farm.Crop, q CropQuery) []farm.Crop {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]farm.Crop, 0, len(crops))
	for _, c := range crops {
		if !q.Status.keep(c) {
			continue
		}
		if needle != "" && !cropMatches(c, needle) {
			continue
		}
		out = append(out, c)
	}
	if q.Sort != "" && q.Sort != SortNone {
		sort.SliceStable(out, func(i, j int) bool { return q.Sort.less(out[i], out[j]) })
	}
	return out
}

// ProjectOrders applies the search to orders. Orders keep their mirror order.
func ProjectOrders(orders []farm.Order, q OrderQuery) []farm.Order {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]farm.Order, 0, len(orders))
	for _, o := range orders {
		if needle != "" && !orderMatches(o, needle) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func cropMatches(c farm.Crop, needle string) bool {
	return strings.Contains(strings.ToLower(c.Name), needle) ||
		(c.Note != "" && strings.Contains(strings.ToLower(c.Note), needle))
}

func orderMatches(o farm.Order, needle string) bool {
	return strings.Contains(strings.ToLower(o.Buyer), needle) ||
		strings.Contains(strings.ToLower(o.Product), needle) ||
		strings.Contains(strings.ToLower(o.ID.String()), needle)
}
