package user

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultUsers is the directory written on first start when no seed file is
// configured.
func DefaultUsers() []*User {
	return []*User{
		{ID: "1234", Name: "Nguyễn Thị Vân Hiếu", Role: RoleHR, Department: "Nhân sự"},
		{ID: "4810", Name: "Trà Thị Tuyết Trang", Role: RoleManager, Department: "Nhân sự"},
		{ID: "5035", Name: "Lê Văn Luýt", Role: RoleEmployee, Department: "Kỹ thuật"},
	}
}

// LoadSeedFile reads a YAML mapping of user ID to user attributes:
//
//	"4810":
//	  name: Trà Thị Tuyết Trang
//	  role: manager
//	  department: Nhân sự
func LoadSeedFile(path string) ([]*User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var rows map[string]User
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("seed file %s has no users", path)
	}

	users := make([]*User, 0, len(rows))
	for id, u := range rows {
		if id == "" {
			return nil, fmt.Errorf("seed file %s: empty user id", path)
		}
		u.ID = id
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
