package wallet

import "fmt"

// Variant names one of the concurrency disciplines a wallet can run under.
type Variant string

const (
	// VariantRace applies no synchronization at all.
	VariantRace Variant = "race"
	// VariantActor serializes every operation of one instance.
	VariantActor Variant = "actor"
	// VariantGlobalActor serializes deposits across every instance sharing a domain.
	VariantGlobalActor Variant = "global_actor"
)

// Variants lists every variant in display order.
var Variants = []Variant{VariantRace, VariantActor, VariantGlobalActor}

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// StorageKey is the persistence key of the variant's balance.
func (v Variant) StorageKey() string {
	return "wallet:" + string(v)
}

// CountsTransactions reports whether sessions of this variant keep a
// transaction counter.
func (v Variant) CountsTransactions() bool {
	return v != VariantRace
}

// TracksLoading reports whether sessions of this variant flag in-flight
// refreshes and forget their balance when a refresh fails.
func (v Variant) TracksLoading() bool {
	return v != VariantRace
}
