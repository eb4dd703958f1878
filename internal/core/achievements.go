package core

import "math"

// Badge is a gamification milestone derived from the ledger.
type Badge struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Earned bool   `json:"earned"`
}

// AchievementStats are pure derived values; nothing is persisted.
type AchievementStats struct {
	Points   int     `json:"points"`
	Level    int     `json:"level"`
	Progress int     `json:"progress"` // percent toward next level, 0-100
	Badges   []Badge `json:"badges"`
}

// ComputeAchievements scores the ledger: 10 points per expense plus 5 per
// 1000 spent in total. Levels come every 100 points.
func ComputeAchievements(expenses []Expense) AchievementStats {
	count := len(expenses)
	var total float64
	for _, e := range expenses {
		if FiniteAmount(e.Amount) {
			total += e.Amount
		}
	}

	points := count*10 + int(total/1000)*5
	level := 1 + points/100
	nextLevelAt := level * 100
	progress := int(math.Round(float64(points) / float64(nextLevelAt) * 100))
	if progress > 100 {
		progress = 100
	}

	return AchievementStats{
		Points:   points,
		Level:    level,
		Progress: progress,
		Badges: []Badge{
			{ID: "first", Label: "First Expense", Earned: count >= 1},
			{ID: "habit", Label: "7+ Expenses", Earned: count >= 7},
			{ID: "spender", Label: "Spent 5k+", Earned: total >= 5000},
		},
	}
}
