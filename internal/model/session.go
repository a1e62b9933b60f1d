package model

import "encoding/json"

// User is the authenticated caregiver's profile as returned by the API.
type User struct {
	ID               ID     `json:"id,omitempty"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	Role             string `json:"role,omitempty"`
	OrganizationName string `json:"organizationName,omitempty"`

	// Extra holds any profile fields this client does not model, so the
	// persisted profile round-trips unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

type userAlias User

// UnmarshalJSON decodes the known profile fields and keeps the rest in Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	var known userAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range []string{"id", "name", "email", "role", "organizationName"} {
		delete(all, k)
	}
	*u = User(known)
	if len(all) > 0 {
		u.Extra = all
	}
	return nil
}

// MarshalJSON writes the known fields followed by Extra.
func (u User) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(userAlias(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return known, nil
	}
	merged := make(map[string]json.RawMessage, len(u.Extra)+5)
	for k, v := range u.Extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Session is an authenticated credential plus the profile it belongs to.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// OrganizationRegistration is the payload for creating a new organization
// together with its first admin account.
type OrganizationRegistration struct {
	OrganizationName string `json:"organizationName"`
	AdminName        string `json:"adminName"`
	AdminEmail       string `json:"adminEmail"`
	AdminPassword    string `json:"adminPassword"`
}
