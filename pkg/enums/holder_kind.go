package enums

import "fmt"

// HolderKind identifies which kind of party owns a wallet account.
type HolderKind string

const (
	HolderKindCustomer HolderKind = "customer"
	HolderKindSeller   HolderKind = "seller"
	HolderKindPlatform HolderKind = "platform"
)

var validHolderKinds = []HolderKind{
	HolderKindCustomer,
	HolderKindSeller,
	HolderKindPlatform,
}

// String implements fmt.Stringer.
func (k HolderKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known HolderKind.
func (k HolderKind) IsValid() bool {
	for _, candidate := range validHolderKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseHolderKind converts raw input into a HolderKind.
func ParseHolderKind(value string) (HolderKind, error) {
	for _, candidate := range validHolderKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid holder kind %q", value)
}
