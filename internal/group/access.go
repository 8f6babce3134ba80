package group

// Access is what one caller may do to one group. It is computed once per
// request by AccessFor and passed to every authorization decision.
type Access struct {
	IsOwner  bool   `json:"is_owner"`
	IsMember bool   `json:"is_member"`
	MemberID string `json:"member_id,omitempty"`
}

// AccessFor derives the caller's role in g
func AccessFor(actorID string, g *Group) Access {
	if actorID == "" || g == nil {
		return Access{}
	}
	a := Access{IsOwner: g.OwnerID == actorID}
	if m := g.MemberByUser(actorID); m != nil {
		a.IsMember = true
		a.MemberID = m.ID
	}
	return a
}

// CanView reports whether the caller is the owner or a member
func (a Access) CanView() bool {
	return a.IsOwner || a.IsMember
}
