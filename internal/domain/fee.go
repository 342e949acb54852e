package domain

import "math"

// BookingFeeRate is the fixed deposit fraction of the route price charged per seat.
const BookingFeeRate = 0.2

// BookingFee returns the seat deposit for a route price, rounded to cents.
func BookingFee(routePrice float64) float64 {
	return roundMoney(routePrice * BookingFeeRate)
}

func roundMoney(x float64) float64 {
	return math.Round(x*100) / 100
}
