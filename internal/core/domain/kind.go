package domain

// Kind identifies which of the four account collections a record belongs to.
// The string value is the wire value used in request bodies and token claims.
type Kind string

const (
	KindAdmin      Kind = "Admin"
	KindAdvertiser Kind = "Advertiser"
	KindPublisher  Kind = "Publisher"
	KindBodyShop   Kind = "BodyShop"
)

// Kinds lists every recognised kind in a stable order.
var Kinds = []Kind{KindAdmin, KindAdvertiser, KindPublisher, KindBodyShop}

// ParseKind returns the Kind for s, or ErrInvalidKind when s is not one of the
// four recognised values. Matching is exact.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// Valid reports whether k is one of the recognised kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAdmin, KindAdvertiser, KindPublisher, KindBodyShop:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }
