package models

// Reputation is derived on demand from the vote log and is never stored.
// CooldownMultiplier scales the posting cooldown window (lower is faster)
// and VoteWeight scales the influence of the user's future votes.
type Reputation struct {
	Karma              int     `json:"karma"`
	CooldownMultiplier float64 `json:"cooldown_multiplier"`
	VoteWeight         float64 `json:"vote_weight"`
}
