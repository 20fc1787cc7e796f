package session

// Admin is the identity record of the logged-in back-office user.
type Admin struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	RoleLabel string `json:"role_label"`
}

// Clone returns a copy of a, or nil when a is nil.
func (a *Admin) Clone() *Admin {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Record is the durable part of a session: the admin identity and its bearer
// token. Either both are set or neither is.
type Record struct {
	Admin *Admin
	Token string
}

// Empty reports whether r holds no session.
func (r Record) Empty() bool {
	return r.Admin == nil && r.Token == ""
}

// Complete reports whether r holds a full session.
func (r Record) Complete() bool {
	return r.Admin != nil && r.Token != ""
}

// Valid reports whether r is either empty or complete. A record with only one
// half present is never valid.
func (r Record) Valid() bool {
	return r.Empty() || r.Complete()
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	return Record{Admin: r.Admin.Clone(), Token: r.Token}
}
