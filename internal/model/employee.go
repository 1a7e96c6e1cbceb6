package model

type EmployeeRole string

const (
	RoleCEO     EmployeeRole = "CEO"
	RoleCTO     EmployeeRole = "CTO"
	RoleCMO     EmployeeRole = "CMO"
	RolePending EmployeeRole = "PENDING"
)

// StaffRoles may read business data and delete history
var StaffRoles = []EmployeeRole{RoleCEO, RoleCTO, RoleCMO}

func (r EmployeeRole) Valid() bool {
	switch r {
	case RoleCEO, RoleCTO, RoleCMO, RolePending:
		return true
	}
	return false
}

func (r EmployeeRole) IsStaff() bool {
	for _, s := range StaffRoles {
		if r == s {
			return true
		}
	}
	return false
}

// Employee is never hard-deleted
type Employee struct {
	ID       string       `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name     string       `gorm:"type:varchar(255);not null" json:"name" validate:"notblank"`
	Position string       `gorm:"type:varchar(255)" json:"position" validate:"notblank"`
	Role     EmployeeRole `gorm:"type:varchar(10)" json:"role,omitempty" validate:"omitempty,oneof=CEO CTO CMO PENDING"`
	Timestamps
}

// EmployeePatch holds the fields an update may change; nil means untouched
type EmployeePatch struct {
	Name     *string       `json:"name,omitempty"`
	Position *string       `json:"position,omitempty"`
	Role     *EmployeeRole `json:"role,omitempty"`
}

// EmployeeName resolves a soft reference, falling back to the raw id
func EmployeeName(employees []Employee, id string) string {
	for _, e := range employees {
		if e.ID == id {
			return e.Name
		}
	}
	return id
}
