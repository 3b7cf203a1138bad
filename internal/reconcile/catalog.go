package reconcile

import (
	"context"
	"iter"

	"github.com/opmodel/platconn/internal/platform"
)

// GroupSource lists the groups of one product.
type GroupSource interface {
	ListProductGroups(ctx context.Context, productID string) (platform.GroupLookup, error)
}

// ProjectCatalog lazily yields the entitlements of type typ.
//
// productRole entries come straight from the product catalog. productGroup
// entries need one ListProductGroups call per product, issued in product
// order as the sequence is consumed; a product without groups contributes
// nothing. The first source error is yielded once and ends the sequence.
// platformRight is a single fixed entry. Unknown types yield nothing.
func ProjectCatalog(ctx context.Context, products []platform.CatalogProduct, typ EntitlementType, groups GroupSource) iter.Seq2[Entitlement, error] {
	return func(yield func(Entitlement, error) bool) {
		switch typ {
		case TypeProductRole:
			for _, p := range products {
				for _, r := range p.Roles {
					if !yield(NewProductRole(EncodeKey(p.ID, r.ID), p.Name+" - "+r.Description), nil) {
						return
					}
				}
			}

		case TypeProductGroup:
			for _, p := range products {
				if err := ctx.Err(); err != nil {
					yield(Entitlement{}, err)
					return
				}
				lookup, err := groups.ListProductGroups(ctx, p.ID)
				if err != nil {
					yield(Entitlement{}, err)
					return
				}
				for _, g := range lookup.Groups {
					if !yield(NewProductGroup(EncodeKey(p.ID, g.ID), p.Name+" - "+g.Name), nil) {
						return
					}
				}
			}

		case TypePlatformRight:
			yield(NewPlatformRight(PlatformAdministrator), nil)

		default:
			// Unknown catalog types are empty.
		}
	}
}
