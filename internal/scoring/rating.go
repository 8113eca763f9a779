package scoring

// Label-to-star derivation inherited from the original scoring scheme: each
// model label maps to 2*label + 3 stars, and the review rating is the floor
// of the mean over all labels, clamped into [1,5].

// BiasThreshold is the bias rating at and above which a review is classified
// as Biased.
const BiasThreshold = 2.5

// DeriveRating converts a non-empty label sequence into a 1-5 star rating.
// Returns 0 when labels is empty; callers must treat that as "no rating".
func DeriveRating(labels []int) int {
	return DeriveRatingWithDivisor(labels, len(labels))
}

// DeriveRatingWithDivisor derives a rating from labels but divides the star
// sum by an explicit divisor. The bias rating divides by the sentiment label
// count rather than its own, so the divisor is parametrized. A divisor <= 0
// yields 0.
func DeriveRatingWithDivisor(labels []int, divisor int) int {
	if len(labels) == 0 || divisor <= 0 {
		return 0
	}
	sum := 0
	for _, label := range labels {
		sum += 2*label + 3
	}
	return clampRating(sum / divisor)
}

// IsBiased reports whether a bias rating crosses the Biased threshold.
// Ratings below 1 (the degraded no-signal case) never do.
func IsBiased(biasRating int) bool {
	return float64(biasRating) >= BiasThreshold
}

func clampRating(rating int) int {
	if rating < 1 {
		return 1
	}
	if rating > 5 {
		return 5
	}
	return rating
}
