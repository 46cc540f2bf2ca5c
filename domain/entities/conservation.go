package entities

// ConservationReport compares external flows against value held in the system.
type ConservationReport struct {
	TotalDeposited int64 `json:"total_deposited"`
	TotalWithdrawn int64 `json:"total_withdrawn"`
	PlayerBalances int64 `json:"player_balances"`
	HouseAvailable int64 `json:"house_available"`
	HouseFees      int64 `json:"house_fees"`
	OpenEscrow     int64 `json:"open_escrow"`
}

// Held is the value currently inside the system
func (r *ConservationReport) Held() int64 {
	return r.PlayerBalances + r.HouseAvailable + r.HouseFees + r.OpenEscrow
}

// IsBalanced holds when nothing was created or destroyed
func (r *ConservationReport) IsBalanced() bool {
	return r.TotalDeposited-r.TotalWithdrawn == r.Held()
}

// Discrepancy is positive when value appeared from nowhere
func (r *ConservationReport) Discrepancy() int64 {
	return r.Held() - (r.TotalDeposited - r.TotalWithdrawn)
}
