package roles

// Role represents a user's permission level.
type Role string

const (
	Employee Role = "employee"
	Manager  Role = "manager"
	Admin    Role = "admin"
)

type HierarchyLevel int

const (
	EmployeeLevel HierarchyLevel = 1
	ManagerLevel  HierarchyLevel = 2
	AdminLevel    HierarchyLevel = 3
)

func (r Role) GetHierarchyLevel() HierarchyLevel {
	switch r {
	case Employee:
		return EmployeeLevel
	case Manager:
		return ManagerLevel
	case Admin:
		return AdminLevel
	default:
		return EmployeeLevel
	}
}

// HasPermission reports whether the role meets or exceeds the required role.
func (r Role) HasPermission(requiredRole Role) bool {
	return r.GetHierarchyLevel() >= requiredRole.GetHierarchyLevel()
}

func (r Role) IsValid() bool {
	switch r {
	case Employee, Manager, Admin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
