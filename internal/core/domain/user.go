package domain

import (
	"encoding/json"
	"strings"
)

// User is the identity record issued by the backend. Only the backend mutates it.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// FullName joins first and last name, or returns "" when neither is known.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}

// Profile is the payload of the "current user" endpoint. Depending on the backend
// it is either an agent (user nested under "user") or a bare user record.
type Profile struct {
	User  User
	Agent *Agent
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var shape struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return err
	}
	if len(shape.User) > 0 && shape.User[0] == '{' {
		var a Agent
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		p.Agent = &a
		if a.User != nil {
			p.User = *a.User
		}
		return nil
	}
	p.Agent = nil
	return json.Unmarshal(data, &p.User)
}
