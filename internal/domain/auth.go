package domain

// Identity is the caller identity decoded from a verified token.
type Identity struct {
	ID   string
	Role Role
}
