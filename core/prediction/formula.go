package prediction

import (
	"math"
	"math/big"

	"github.com/kilianp07/studytime/core/model"
)

const (
	// BaseMinutes is the duration suggested for grade zero before adjustment.
	BaseMinutes = 30
	// MinutesPerGrade is added to the base for every grade level.
	MinutesPerGrade = 2
	// ScoreThreshold separates low scores from standard ones. Scores strictly
	// below it use LowScoreMultiplier.
	ScoreThreshold = 50.0

	LowScoreMultiplier = 1.5
	StandardMultiplier = 0.9
)

// grades inside this range keep 30 + 2*grade within int64.
const (
	maxExactGrade = (math.MaxInt64 - BaseMinutes) / MinutesPerGrade
	minExactGrade = (math.MinInt64 - BaseMinutes) / MinutesPerGrade
)

// FormulaEngine applies base_time = 30 + 2*grade scaled by 1.5 when the last
// score is below 50 and by 0.9 otherwise. The subject is ignored.
type FormulaEngine struct{}

// NewFormulaEngine returns the fixed-formula engine.
func NewFormulaEngine() FormulaEngine { return FormulaEngine{} }

// Predict implements Engine.
func (FormulaEngine) Predict(req model.PredictionRequest) (model.PredictionResponse, model.Breakdown) {
	base := BaseTime(req.Grade)
	mult, branch := Multiplier(req.LastScore)
	resp := model.PredictionResponse{
		SuggestedDuration: base * mult,
		Unit:              model.UnitMinutes,
	}
	return resp, model.Breakdown{BaseTime: base, Multiplier: mult, Branch: branch}
}

// BaseTime returns 30 + 2*grade as a float64. The sum is computed exactly and
// rounded once, also for grades whose base overflows int64.
func BaseTime(grade int64) float64 {
	if grade >= minExactGrade && grade <= maxExactGrade {
		return float64(BaseMinutes + MinutesPerGrade*grade)
	}
	b := new(big.Int).Mul(big.NewInt(grade), big.NewInt(MinutesPerGrade))
	b.Add(b, big.NewInt(BaseMinutes))
	f, _ := new(big.Float).SetInt(b).Float64()
	return f
}

// Multiplier selects the score multiplier. NaN is not below the threshold and
// falls into the standard branch.
func Multiplier(lastScore float64) (float64, model.Branch) {
	if lastScore < ScoreThreshold {
		return LowScoreMultiplier, model.BranchLowScore
	}
	return StandardMultiplier, model.BranchStandard
}
