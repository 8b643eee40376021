package crawl

import "math"

// reviewCap is the review count at which the evidence weight saturates.
const reviewCap = 1000

// Popularity derives a normalized popularity score in [0, 1] from a place's
// rating (1-5 scale) and review count. The multiplicative form pulls both
// high-rating/low-evidence and low-rating/high-evidence places toward zero.
// Missing inputs score zero.
func Popularity(rating *float64, reviewCount *int) float64 {
	if rating == nil || reviewCount == nil {
		return 0
	}
	if *rating < 1 || *reviewCount < 0 {
		return 0
	}

	normalizedRating := (*rating - 1) / 4
	cappedReviews := math.Min(1, float64(*reviewCount)/reviewCap)

	return math.Round(normalizedRating*cappedReviews*100) / 100
}
