package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// DomainUnit is the hash domain for compilation-unit identity.
// The version suffix allows the algorithm to change later.
const DomainUnit = "solir/unit/v1"

// UnitID identifies a compilation unit: the set of files sharing one
// compiler ID namespace.
type UnitID string

// Short returns the first 12 hex characters, for logs.
func (u UnitID) Short() string {
	if len(u) <= 12 {
		return string(u)
	}
	return string(u[:12])
}

// NormalizePath returns the NFC form of a source path, so the same file named
// through differently composed Unicode maps to one key.
func NormalizePath(p string) string {
	return norm.NFC.String(p)
}

// UnitIDFor derives a unit identity from its source paths. Order does not
// matter. Format: SHA256(domain 0x00 path 0x00 path ...).
func UnitIDFor(paths []string) UnitID {
	sorted := make([]string, len(paths))
	for i, p := range paths {
		sorted[i] = NormalizePath(p)
	}
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(DomainUnit))
	for _, p := range sorted {
		h.Write([]byte{0x00})
		h.Write([]byte(p))
	}
	return UnitID(hex.EncodeToString(h.Sum(nil)))
}
