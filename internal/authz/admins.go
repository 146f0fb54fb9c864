package authz

// Admins is the fixed allow-list of user ids permitted to delete
// shared-scope entries they did not create.
type Admins struct {
	ids map[string]struct{}
}

func NewAdmins(ids []string) *Admins {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return &Admins{ids: m}
}

func (a *Admins) IsAdmin(userID string) bool {
	if a == nil {
		return false
	}
	_, ok := a.ids[userID]
	return ok
}
