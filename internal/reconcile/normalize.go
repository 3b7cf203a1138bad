package reconcile

import (
	"strconv"
	"strings"

	"github.com/opmodel/platconn/internal/platform"
)

// PlatformAdministrator is the only platformRights value.
const PlatformAdministrator = "Platform Administrator"

// Attributes is the flat attribute set of an account.
type Attributes struct {
	Email          string   `json:"email"`
	IsEnabled      bool     `json:"isEnabled"`
	ProductRoles   []string `json:"productRoles"`
	ProductGroups  []string `json:"productGroups"`
	PlatformRights []string `json:"platformRights"`
}

// Account is a platform user as the governance platform sees it.
type Account struct {
	Identity   string     `json:"identity"`
	UUID       string     `json:"uuid"`
	Attributes Attributes `json:"attributes"`
	Disabled   bool       `json:"disabled"`
}

// Normalize flattens a platform user. Keys are emitted in product order and,
// within a product, in role or group order. Slices are never nil.
func Normalize(a platform.Account) Account {
	roles := []string{}
	groups := []string{}
	for _, p := range a.Products {
		for _, r := range p.Roles {
			roles = append(roles, EncodeKey(p.ID, r.ID))
		}
		for _, g := range p.Groups {
			groups = append(groups, EncodeKey(p.ID, g.ID))
		}
	}

	rights := []string{}
	if a.IsAdmin {
		rights = append(rights, PlatformAdministrator)
	}

	return Account{
		Identity: a.Email,
		UUID:     a.Email,
		Attributes: Attributes{
			Email:          a.Email,
			IsEnabled:      a.IsEnabled,
			ProductRoles:   roles,
			ProductGroups:  groups,
			PlatformRights: rights,
		},
		Disabled: !a.IsEnabled,
	}
}

// TableHeaders implements output.TableRower.
func (a Account) TableHeaders() []string {
	return []string{"IDENTITY", "STATUS", "ADMIN", "ROLES", "GROUPS"}
}

// TableRow implements output.TableRower.
func (a Account) TableRow() []string {
	status := "enabled"
	if a.Disabled {
		status = "disabled"
	}
	return []string{
		a.Identity,
		status,
		strconv.FormatBool(len(a.Attributes.PlatformRights) > 0),
		strings.Join(a.Attributes.ProductRoles, ","),
		strings.Join(a.Attributes.ProductGroups, ","),
	}
}
