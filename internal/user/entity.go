package user

type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleHR       Role = "HR"
)

// User is keyed by ID in the users table; the ID itself is not stored in the row.
type User struct {
	ID         string `json:"-" yaml:"-"`
	Name       string `json:"name" yaml:"name"`
	Role       Role   `json:"role" yaml:"role"`
	Department string `json:"department" yaml:"department"`
}

// ReviewsLeave reports whether the user is notified about new leave requests.
func (u *User) ReviewsLeave() bool {
	return u.Role == RoleManager || u.Role == RoleHR
}

// DisplayName falls back to the ID for users without a name.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}
