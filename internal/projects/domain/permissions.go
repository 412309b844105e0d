package domain

// Permission predicates are plain field comparisons on the loaded project.

func (p *Project) IsCreator(userID string) bool {
	return userID != "" && p.CreatedBy == userID
}

// Member returns the member entry for userID.
func (p *Project) Member(userID string) (*Member, bool) {
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			return &p.Members[i], true
		}
	}
	return nil, false
}

func CanView(p *Project, userID string) bool {
	if p.IsCreator(userID) {
		return true
	}
	_, ok := p.Member(userID)
	return ok
}

func CanEdit(p *Project, userID string) bool {
	return p.IsCreator(userID)
}

func CanDelete(p *Project, userID string) bool {
	return p.IsCreator(userID)
}

// CanWriteTasks excludes viewers.
func CanWriteTasks(p *Project, userID string) bool {
	if p.IsCreator(userID) {
		return true
	}
	m, ok := p.Member(userID)
	return ok && (m.Role == RoleAdmin || m.Role == RoleMember)
}

func CanComment(p *Project, userID string) bool {
	return CanView(p, userID)
}

// MemberIDs derives the mirrored id array from the member list.
func MemberIDs(members []Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// Audience is every user whose dashboard shows p. May contain duplicates.
func (p *Project) Audience() []string {
	return append(MemberIDs(p.Members), p.CreatedBy)
}
