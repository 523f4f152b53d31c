package inventory

import "farmdash/internal/farm"

// Summary is the dashboard's headline numbers.
type Summary struct {
	Crops      int
	Available  int
	SoldOut    int
	StockKg    float64
	StockValue float64

	Orders         int
	OrdersByStatus map[farm.OrderStatus]int
}

func Summarize(crops []farm.Crop, orders []farm.Order) Summary {
	s := Summary{
		Crops:          len(crops),
		Orders:         len(orders),
		OrdersByStatus: make(map[farm.OrderStatus]int, len(farm.OrderStatuses)),
	}
	for _, c := range crops {
		switch c.Status {
		case farm.CropAvailable:
			s.Available++
		case farm.CropSoldOut:
			s.SoldOut++
		}
		s.StockKg += c.Quantity
		s.StockValue += c.Quantity * c.Price
	}
	for _, o := range orders {
		s.OrdersByStatus[o.Status]++
	}
	return s
}
