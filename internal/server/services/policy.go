package services

import "github.com/dmitrijs2005/notekeeper/internal/server/models"

// RoleSet is an explicit set of admitted roles.
type RoleSet []models.Role

func (s RoleSet) Contains(r models.Role) bool {
	for _, v := range s {
		if v == r {
			return true
		}
	}
	return false
}

var (
	AnyRole    = RoleSet{models.RoleUser, models.RoleAdmin, models.RoleSuperuser}
	StaffRoles = RoleSet{models.RoleAdmin, models.RoleSuperuser}
	SuperOnly  = RoleSet{models.RoleSuperuser}
)

// Operation names a protected or public entry point.
type Operation string

const (
	OpRegister         Operation = "register"
	OpLogin            Operation = "login"
	OpWhoAmI           Operation = "whoami"
	OpUpdateRole       Operation = "updateRole"
	OpCreateRecord     Operation = "createRecord"
	OpGetRecord        Operation = "getRecord"
	OpUpdateRecord     Operation = "updateRecord"
	OpDeleteRecord     Operation = "deleteRecord"
	OpListRecords      Operation = "listRecords"
	OpRestoreRecord    Operation = "restoreRecord"
	OpGetRecordStaff   Operation = "getRecordForStaff"
	OpListRecordsStaff Operation = "listRecordsForStaff"
)

// Policy is the access rule of one operation. Public operations need no
// token; all others admit exactly the listed roles.
type Policy struct {
	Public  bool
	Allowed RoleSet
}

var policies = map[Operation]Policy{
	OpRegister:         {Public: true},
	OpLogin:            {Public: true},
	OpWhoAmI:           {Allowed: AnyRole},
	OpUpdateRole:       {Allowed: SuperOnly},
	OpCreateRecord:     {Allowed: AnyRole},
	OpGetRecord:        {Allowed: AnyRole},
	OpUpdateRecord:     {Allowed: AnyRole},
	OpDeleteRecord:     {Allowed: AnyRole},
	OpListRecords:      {Allowed: AnyRole},
	OpRestoreRecord:    {Allowed: StaffRoles},
	OpGetRecordStaff:   {Allowed: StaffRoles},
	OpListRecordsStaff: {Allowed: StaffRoles},
}

// PolicyFor returns the policy of op. Unknown operations have none.
func PolicyFor(op Operation) (Policy, bool) {
	p, ok := policies[op]
	return p, ok
}
