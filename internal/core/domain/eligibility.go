package domain

// FreeOrderInterval is the cadence of free orders: every fifth order is free.
const FreeOrderInterval = 5

// IsNextOrderFree reports whether the order following orderCount prior
// orders is free. Negative counts are never free.
func IsNextOrderFree(orderCount int) bool {
	if orderCount < 0 {
		return false
	}
	return (orderCount+1)%FreeOrderInterval == 0
}
