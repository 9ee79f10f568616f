package domain

// Session is the authenticated identity held for one browser.
// Role is only meaningful while Token is present.
type Session struct {
	Token        string `json:"-"`
	RefreshToken string `json:"-"`
	Role         Role   `json:"role,omitempty"`
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Normalize drops a role left behind without a token.
func (s Session) Normalize() Session {
	if !s.Authenticated() {
		return Session{}
	}
	return s
}
