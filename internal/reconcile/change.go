package reconcile

import (
	"slices"
	"strings"

	"github.com/opmodel/platconn/internal/platform"
)

// Op is an attribute change operation.
type Op string

const (
	OpAdd    Op = "Add"
	OpRemove Op = "Remove"
	OpSet    Op = "Set"
)

// ParseOp maps add, remove and set to their Op in any letter case. Other
// strings are returned as an Op that ApplyChange ignores.
func ParseOp(s string) Op {
	for _, op := range []Op{OpAdd, OpRemove, OpSet} {
		if strings.EqualFold(s, string(op)) {
			return op
		}
	}
	return Op(s)
}

// Attribute names accepted in changes and create input.
const (
	AttrProductRoles   = "productRoles"
	AttrProductGroups  = "productGroups"
	AttrPlatformRights = "platformRights"
)

// Change is one attribute edit.
type Change struct {
	Op        Op     `json:"op"`
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// ChangeInput is a change as received from a caller. Value may be a string
// or a list of strings.
type ChangeInput struct {
	Op        string `json:"op"`
	Attribute string `json:"attribute"`
	Value     any    `json:"value"`
}

// ExpandChanges turns caller changes into single-valued Changes, keeping
// order. A list value becomes one Change per element.
func ExpandChanges(in []ChangeInput) []Change {
	var out []Change
	for _, ci := range in {
		op := ParseOp(ci.Op)
		values := StringValues(ci.Value)
		if len(values) == 0 {
			out = append(out, Change{Op: op, Attribute: ci.Attribute})
			continue
		}
		for _, v := range values {
			out = append(out, Change{Op: op, Attribute: ci.Attribute, Value: v})
		}
	}
	return out
}

// changeKind is the closed set of edits ApplyChange understands.
type changeKind int

const (
	kindUnhandled changeKind = iota
	kindAddRole
	kindAddGroup
	kindGrantAdmin
	kindRemoveRole
	kindRemoveGroup
	kindRevokeAdmin
)

func classify(c Change) changeKind {
	switch c.Op {
	case OpAdd:
		switch c.Attribute {
		case AttrProductRoles:
			return kindAddRole
		case AttrProductGroups:
			return kindAddGroup
		case AttrPlatformRights:
			return kindGrantAdmin
		}
	case OpRemove:
		switch c.Attribute {
		case AttrProductRoles:
			return kindRemoveRole
		case AttrProductGroups:
			return kindRemoveGroup
		case AttrPlatformRights:
			return kindRevokeAdmin
		}
	}
	return kindUnhandled
}

// Handled reports whether ApplyChange acts on c.
func (c Change) Handled() bool {
	return classify(c) != kindUnhandled
}

// ApplyChange returns a copy of draft with c applied. Adds are idempotent.
// Removing an absent role or group changes nothing, except that a targeted
// product left with no roles and no groups is dropped. The platformRights
// value is ignored: Add grants admin, Remove revokes it.
func ApplyChange(draft platform.AccountRequest, c Change) platform.AccountRequest {
	next := draft.Clone()

	switch classify(c) {
	case kindAddRole:
		pid, rid := DecodeKey(c.Value)
		next.Products = addRole(next.Products, pid, rid)
	case kindAddGroup:
		pid, gid := DecodeKey(c.Value)
		next.Products = addGroup(next.Products, pid, gid)
	case kindGrantAdmin:
		next.IsAdmin = true
	case kindRemoveRole:
		pid, rid := DecodeKey(c.Value)
		next.Products = removeRole(next.Products, pid, rid)
	case kindRemoveGroup:
		pid, gid := DecodeKey(c.Value)
		next.Products = removeGroup(next.Products, pid, gid)
	case kindRevokeAdmin:
		next.IsAdmin = false
	case kindUnhandled:
		// Set, unknown operations and unknown attributes leave the draft as is.
	}

	return next
}

// ApplyChanges folds changes over draft in order.
func ApplyChanges(draft platform.AccountRequest, changes []Change) platform.AccountRequest {
	next := draft.Clone()
	for _, c := range changes {
		next = ApplyChange(next, c)
	}
	return next
}

func productIndex(products []platform.Product, id string) int {
	return slices.IndexFunc(products, func(p platform.Product) bool { return p.ID == id })
}

func addRole(products []platform.Product, pid, rid string) []platform.Product {
	i := productIndex(products, pid)
	if i < 0 {
		return append(products, platform.Product{ID: pid, Roles: []platform.Role{{ID: rid}}, Groups: []platform.Group{}})
	}
	if !slices.ContainsFunc(products[i].Roles, func(r platform.Role) bool { return r.ID == rid }) {
		products[i].Roles = append(products[i].Roles, platform.Role{ID: rid})
	}
	return products
}

func addGroup(products []platform.Product, pid, gid string) []platform.Product {
	i := productIndex(products, pid)
	if i < 0 {
		return append(products, platform.Product{ID: pid, Roles: []platform.Role{}, Groups: []platform.Group{{ID: gid}}})
	}
	if !slices.ContainsFunc(products[i].Groups, func(g platform.Group) bool { return g.ID == gid }) {
		products[i].Groups = append(products[i].Groups, platform.Group{ID: gid})
	}
	return products
}

func removeRole(products []platform.Product, pid, rid string) []platform.Product {
	i := productIndex(products, pid)
	if i < 0 {
		return products
	}
	products[i].Roles = slices.DeleteFunc(products[i].Roles, func(r platform.Role) bool { return r.ID == rid })
	return pruneIfEmpty(products, i)
}

func removeGroup(products []platform.Product, pid, gid string) []platform.Product {
	i := productIndex(products, pid)
	if i < 0 {
		return products
	}
	products[i].Groups = slices.DeleteFunc(products[i].Groups, func(g platform.Group) bool { return g.ID == gid })
	return pruneIfEmpty(products, i)
}

// pruneIfEmpty drops products[i] once it holds neither roles nor groups.
func pruneIfEmpty(products []platform.Product, i int) []platform.Product {
	if len(products[i].Roles) == 0 && len(products[i].Groups) == 0 {
		return slices.Delete(products, i, i+1)
	}
	return products
}
