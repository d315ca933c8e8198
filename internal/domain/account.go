package domain

// Role distinguishes the two kinds of signed-in session.
type Role int

const (
	RoleGuest Role = iota
	RoleAdmin
	RoleCustomer
)

// String returns a human-readable role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleCustomer:
		return "customer"
	default:
		return "guest"
	}
}

// Credentials are shared by every role. PasswordHash is a bcrypt hash.
type Credentials struct {
	Username     string
	PasswordHash string
	Email        string
}

// Customer is a registered diner.
type Customer struct {
	Credentials
	Name string
	Age  int
}

// Identity is the result of a successful sign-in.
type Identity struct {
	Username string
	Role     Role
}
