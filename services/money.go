package services

// All money in this service is int64 paise. These helpers keep percentage
// and proration math in integer arithmetic, rounding half up.

// roundDiv divides num by den rounding half up. den must be positive.
func roundDiv(num, den int64) int64 {
	return (num + den/2) / den
}

// percentOf computes pct% of amount in paise, rounding half up.
func percentOf(amount, pct int64) int64 {
	return roundDiv(amount*pct, 100)
}
