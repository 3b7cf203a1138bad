package reconcile

import "strings"

// KeySeparator joins a product id and a role or group id.
const KeySeparator = ":"

// EncodeKey returns productID + ":" + entityID. Neither id is escaped.
func EncodeKey(productID, entityID string) string {
	return productID + KeySeparator + entityID
}

// DecodeKey splits key on its first colon. A key without a colon decodes to
// an empty productID and the whole key as entityID.
//
// Ids that contain a colon themselves do not survive a round trip: a product
// id "a:b" with role "c" encodes to "a:b:c" and decodes to ("a", "b:c").
func DecodeKey(key string) (productID, entityID string) {
	productID, entityID, found := strings.Cut(key, KeySeparator)
	if !found {
		return "", key
	}
	return productID, entityID
}
