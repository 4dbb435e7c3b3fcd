package domain

// User is the account record returned by the backend.
//
// The client treats it as opaque: it is stored in the session and passed
// back unchanged.
type User struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
	Password string `json:"password,omitempty" yaml:"-" table:"-"`
}

// Redacted returns a copy of the user without the password field.
// The login endpoint echoes the stored record, password included.
func (u User) Redacted() User {
	u.Password = ""
	return u
}

// UserRef is the `{id}` reference nested into provider and booking payloads.
type UserRef struct {
	ID int64 `json:"id"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are omitted
// from the request so the update stays partial.
type ProfileUpdate struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// IsEmpty reports whether no field is set.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil
}

// AuthResult is the outcome of a login or registration call.
//
// Token is empty when the server replied with a bare user record.
type AuthResult struct {
	Token string `json:"token,omitempty"`
	User  User   `json:"user"`
}

// HasToken reports whether the server issued a token.
func (r AuthResult) HasToken() bool {
	return r.Token != ""
}
