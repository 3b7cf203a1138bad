// Package reconcile maps platform users onto flat identity attributes and
// back.
//
// A platform user carries a list of products, each holding role and group
// ids. The governance side sees three multi-valued attributes instead:
// productRoles and productGroups, whose values are "productId:childId"
// composite keys, and platformRights, which holds "Platform Administrator"
// when the user is an admin. Normalize projects the nested form into the flat
// one; BuildForCreate and ApplyChange turn flat attribute values back into a
// nested draft ready for a single upstream write.
//
// Everything here is pure. Drafts are values: every step returns a new draft
// and never aliases its input.
package reconcile
