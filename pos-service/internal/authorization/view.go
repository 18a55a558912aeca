package authorization

import "github.com/Kaosethi/MerchantApp-sub000/shared/models"

// OutcomeView converts an outcome to its JSON shape.
func OutcomeView(o Outcome) *models.OutcomeView {
	return &models.OutcomeView{
		Kind:          string(o.Kind),
		TransactionID: o.TransactionID,
		AttemptsLeft:  o.AttemptsLeft,
		Message:       o.Message,
	}
}

// View projects a snapshot for the session API.
func View(sessionID string, s Snapshot) *models.AuthorizationView {
	view := &models.AuthorizationView{
		SessionID:         sessionID,
		Status:            string(s.Status),
		Amount:            s.Amount,
		BeneficiaryID:     s.BeneficiaryID,
		BeneficiaryName:   s.BeneficiaryName,
		Category:          s.Category,
		PinLength:         s.PinLength,
		AttemptsRemaining: s.AttemptsRemaining,
		Locked:            s.Locked,
	}
	if s.LastOutcome != nil {
		view.LastOutcome = OutcomeView(*s.LastOutcome)
	}
	return view
}
