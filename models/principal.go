package models

// Principal is an authenticated identity capable of authorizing
// operations: the platform owner, the bonus admin, a game operator
// account or a player account.
type Principal string

func (p Principal) String() string {
	return string(p)
}

// Platform roles checked through the Authorizer port.
const (
	// RoleSignup is the restricted platform role allowed to trigger
	// greeting bonuses for new players.
	RoleSignup = "signup"
)
