package quote

import "github.com/felipesbonatti/case-credit-risk-prediction/internal/model"

// Decide maps a risk grade to the operational decision:
// AA, A and B approve; C and D go to manual review; E through H deny.
func Decide(grade model.RiskGrade) model.Decision {
	switch {
	case grade.Rank <= 2:
		return model.DecisionApprove
	case grade.Rank <= 4:
		return model.DecisionReview
	default:
		return model.DecisionDeny
	}
}
