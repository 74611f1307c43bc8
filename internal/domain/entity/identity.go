package entity

// Identity is the caller identity extracted from a verified session token.
// The zero value is the anonymous caller. Claims are trusted as issued; role
// changes after issuance are not re-checked until the token expires.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
}

// Anonymous is the identity used when no valid token was presented.
var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool { return i.ID == 0 }

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
