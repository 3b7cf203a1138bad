package reconcile

// EntitlementType names one of the entitlement catalogs.
type EntitlementType string

const (
	TypeProductRole   EntitlementType = "productRole"
	TypeProductGroup  EntitlementType = "productGroup"
	TypePlatformRight EntitlementType = "platformRight"
)

// EntitlementTypes lists the known types in catalog order.
func EntitlementTypes() []EntitlementType {
	return []EntitlementType{TypeProductRole, TypeProductGroup, TypePlatformRight}
}

// Valid reports whether t is a known type.
func (t EntitlementType) Valid() bool {
	switch t {
	case TypeProductRole, TypeProductGroup, TypePlatformRight:
		return true
	}
	return false
}

// EntitlementAttributes carries the catalog fields of an entitlement.
type EntitlementAttributes struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// Entitlement is one catalog entry.
type Entitlement struct {
	Identity   string                `json:"identity"`
	UUID       string                `json:"uuid"`
	Type       EntitlementType       `json:"type"`
	Attributes EntitlementAttributes `json:"attributes"`
}

// NewProductRole builds a productRole entry; identity is the composite key.
func NewProductRole(id, displayName string) Entitlement {
	return Entitlement{
		Identity:   id,
		UUID:       displayName,
		Type:       TypeProductRole,
		Attributes: EntitlementAttributes{ID: id, DisplayName: displayName},
	}
}

// NewProductGroup builds a productGroup entry; identity is the composite key.
func NewProductGroup(id, displayName string) Entitlement {
	return Entitlement{
		Identity:   id,
		UUID:       displayName,
		Type:       TypeProductGroup,
		Attributes: EntitlementAttributes{ID: id, DisplayName: displayName},
	}
}

// NewPlatformRight builds the platformRight entry.
func NewPlatformRight(displayName string) Entitlement {
	return Entitlement{
		Identity:   displayName,
		UUID:       displayName,
		Type:       TypePlatformRight,
		Attributes: EntitlementAttributes{DisplayName: displayName},
	}
}

// TableHeaders implements output.TableRower.
func (e Entitlement) TableHeaders() []string {
	return []string{"TYPE", "IDENTITY", "DISPLAY NAME"}
}

// TableRow implements output.TableRower.
func (e Entitlement) TableRow() []string {
	return []string{string(e.Type), e.Identity, e.Attributes.DisplayName}
}
