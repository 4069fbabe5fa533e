package models

// User is the authenticated principal carried by a session token.
// There is no user table: the single admin account comes from configuration.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

const RoleAdmin = "admin"
