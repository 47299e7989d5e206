package relay

// Session is one live client connection. It is the unit of addressing for
// outbound events and may or may not be bound to a user identity.
type Session struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Anonymous reports whether the session supplied no identity at connect time.
func (s Session) Anonymous() bool {
	return s.UserID == ""
}

// MemberID is the identity used for presence listings: the user id when one
// was supplied, otherwise the session id.
func (s Session) MemberID() string {
	if s.UserID != "" {
		return s.UserID
	}
	return s.ID
}

// LocationMember is one entry of a location presence snapshot.
type LocationMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PresenceSnapshot is the derived presence view of a location room. It is
// computed on demand and never stored.
type PresenceSnapshot struct {
	Area        string           `json:"area"`
	OnlineCount int              `json:"onlineCount"`
	Members     []LocationMember `json:"members"`
}
