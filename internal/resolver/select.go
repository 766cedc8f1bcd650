package resolver

import (
	"github.com/Veraticus/sapflow/internal/model"
)

// filter returns the orders satisfying keep, preserving order.
func filter(orders []model.SapOrder, keep func(model.SapOrder) bool) []model.SapOrder {
	var out []model.SapOrder
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

// Newest picks the winner among orders that satisfy the same filter:
// latest creation timestamp, then highest id. It also returns how many
// candidates there were so callers can report duplicates.
func Newest(orders []model.SapOrder) (model.SapOrder, int, bool) {
	if len(orders) == 0 {
		return model.SapOrder{}, 0, false
	}
	best := orders[0]
	for _, o := range orders[1:] {
		if o.NewerThan(best) {
			best = o
		}
	}
	return best, len(orders), true
}

// newestWhere is Newest over the orders satisfying keep.
func newestWhere(orders []model.SapOrder, keep func(model.SapOrder) bool) (model.SapOrder, int, bool) {
	return Newest(filter(orders, keep))
}

// smallestCar picks the order with the lowest car number. Orders without a car
// number rank after every numbered one; equal car numbers go to the newest order.
func smallestCar(orders []model.SapOrder) (model.SapOrder, bool) {
	var (
		best  model.SapOrder
		found bool
	)
	for _, o := range orders {
		if !found || carLess(o, best) {
			best, found = o, true
		}
	}
	return best, found
}

func carLess(a, b model.SapOrder) bool {
	ac, aok := a.Car()
	bc, bok := b.Car()
	switch {
	case aok && !bok:
		return true
	case !aok && bok:
		return false
	case aok && bok && ac != bc:
		return ac < bc
	default:
		return a.NewerThan(b)
	}
}
