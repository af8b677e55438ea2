package enums

import "fmt"

// FulfillerKind identifies the party responsible for an order and entitled
// to the seller share of its proceeds.
type FulfillerKind string

const (
	FulfillerKindPlatform FulfillerKind = "platform"
	FulfillerKindSeller   FulfillerKind = "seller"
)

var validFulfillerKinds = []FulfillerKind{
	FulfillerKindPlatform,
	FulfillerKindSeller,
}

// String implements fmt.Stringer.
func (k FulfillerKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known FulfillerKind.
func (k FulfillerKind) IsValid() bool {
	for _, candidate := range validFulfillerKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseFulfillerKind converts raw input into a FulfillerKind.
func ParseFulfillerKind(value string) (FulfillerKind, error) {
	for _, candidate := range validFulfillerKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfiller kind %q", value)
}
