package loan

import "math"

const (
	baseCreditScore = 600
	minCreditScore  = 300
)

// EstimateCreditScore is the portal's local heuristic, not a bureau
// score. It starts at 600 and subtracts 100 points per unit of limit
// utilization and 2 points per percent of average interest, floored at
// 300. An empty loan set always scores 600.
func EstimateCreditScore(loans []ActiveLoan, limit int) int {
	if len(loans) == 0 {
		return baseCreditScore
	}
	if limit < 1 {
		limit = 1
	}

	utilization := float64(len(loans)) / float64(limit)
	var totalRate float64
	for _, l := range loans {
		totalRate += l.InterestRate
	}
	avgRate := totalRate / float64(len(loans))

	score := math.Round(baseCreditScore - utilization*100 - avgRate*2)
	if score < minCreditScore {
		return minCreditScore
	}
	return int(score)
}
