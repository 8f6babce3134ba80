package group

// Readiness summarizes whether a group's application may be submitted
type Readiness struct {
	CanSubmit          bool `json:"can_submit"`
	ApprovedCount      int  `json:"approved_count"`
	ParticipatingCount int  `json:"participating_count"`
	RequiredCount      int  `json:"required_count"`
	PendingCount       int  `json:"pending_count"`
}

// CheckReadiness counts approved and participating members. A group can
// submit once both counts reach the required count and no invitation is
// still unanswered.
func CheckReadiness(g *Group) Readiness {
	r := Readiness{RequiredCount: g.RequiredCount}
	for _, m := range g.Members {
		switch m.Status {
		case MemberStatusApproved:
			r.ApprovedCount++
			if m.ParticipationStatus == ParticipationParticipating {
				r.ParticipatingCount++
			}
		case MemberStatusPending:
			r.PendingCount++
		}
	}
	r.CanSubmit = r.ApprovedCount >= r.RequiredCount &&
		r.ParticipatingCount >= r.RequiredCount &&
		r.PendingCount == 0
	return r
}
