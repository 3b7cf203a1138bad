package reconcile

import (
	"slices"

	"github.com/opmodel/platconn/internal/platform"
)

// CreateInput is the payload of an account create request.
type CreateInput struct {
	// Identity, when set, is the email the account is created under.
	Identity string `json:"identity,omitempty"`

	// Attributes holds firstName, lastName, email and optionally
	// productRoles, productGroups and platformRights. The multi-valued
	// attributes may be a single string or a list of strings.
	Attributes map[string]any `json:"attributes"`
}

// Email is the address used both to probe for an existing user and as the
// email of a new one: Identity when set, otherwise attributes.email.
func (in CreateInput) Email() string {
	if in.Identity != "" {
		return in.Identity
	}
	return stringAttr(in.Attributes, "email")
}

// BuildForCreate returns the draft to write for in and the write mode.
//
// With no existing user the draft starts from the input names and email,
// enabled and without admin rights, and is created. An existing user seeds
// the draft instead and the create becomes an update of that record. Input
// productGroups and then productRoles are merged in with idempotent adds;
// platformRights containing "Platform Administrator" grants admin.
func BuildForCreate(in CreateInput, existing platform.AccountLookup) (platform.AccountRequest, platform.WriteMode) {
	var draft platform.AccountRequest
	mode := platform.WriteCreate

	if existing.Found {
		draft = platform.RequestFromAccount(existing.Account)
		mode = platform.WriteUpdate
	} else {
		draft = platform.AccountRequest{
			Email:     in.Email(),
			FirstName: stringAttr(in.Attributes, "firstName"),
			LastName:  stringAttr(in.Attributes, "lastName"),
			IsEnabled: true,
			IsAdmin:   false,
			Products:  []platform.Product{},
		}
	}

	var changes []Change
	for _, v := range StringValues(in.Attributes[AttrProductGroups]) {
		changes = append(changes, Change{Op: OpAdd, Attribute: AttrProductGroups, Value: v})
	}
	for _, v := range StringValues(in.Attributes[AttrProductRoles]) {
		changes = append(changes, Change{Op: OpAdd, Attribute: AttrProductRoles, Value: v})
	}
	if slices.Contains(StringValues(in.Attributes[AttrPlatformRights]), PlatformAdministrator) {
		changes = append(changes, Change{Op: OpAdd, Attribute: AttrPlatformRights, Value: PlatformAdministrator})
	}

	return ApplyChanges(draft, changes), mode
}

// StringValues reads a single- or multi-valued attribute. Non-string list
// elements and other types are skipped.
func StringValues(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return slices.Clone(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func stringAttr(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}
