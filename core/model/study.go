package model

// UnitMinutes is the only unit a suggested duration is expressed in.
const UnitMinutes = "minutes"

// PredictionRequest carries the inputs of a single study-duration suggestion.
type PredictionRequest struct {
	Grade     int64   `json:"grade"`
	Subject   string  `json:"subject"`   // accepted but not used by the formula
	LastScore float64 `json:"last_score"` // score of the previous assessment
}

// PredictionResponse is the suggestion returned to the caller.
type PredictionResponse struct {
	SuggestedDuration float64 `json:"suggested_duration"` // minutes
	Unit              string  `json:"unit"`
}

// Branch identifies which score multiplier was applied.
type Branch int

const (
	BranchStandard Branch = iota
	BranchLowScore
)

// String returns the label used in metrics and events.
func (b Branch) String() string {
	switch b {
	case BranchStandard:
		return "standard"
	case BranchLowScore:
		return "low_score"
	default:
		return "unknown"
	}
}

// Breakdown exposes the intermediate values of a computation.
type Breakdown struct {
	BaseTime   float64
	Multiplier float64
	Branch     Branch
}
