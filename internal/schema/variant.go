package schema

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Variant names a hanab.live ruleset variant. The set of variants is maintained
// externally, so any string is a syntactically valid Variant.
type Variant string

// NoVariant is the base game.
const NoVariant Variant = "No Variant"

// VariantPolicy decides what the decoder does with a variant missing from its catalog.
type VariantPolicy int

const (
	// VariantAllow accepts unknown variants silently.
	VariantAllow VariantPolicy = iota
	// VariantWarn accepts unknown variants and logs a warning.
	VariantWarn
	// VariantReject fails decoding with an InvalidEnumError.
	VariantReject
)

// ParseVariantPolicy maps "allow", "warn" or "reject" to a VariantPolicy.
func ParseVariantPolicy(s string) (VariantPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "allow":
		return VariantAllow, nil
	case "warn":
		return VariantWarn, nil
	case "reject":
		return VariantReject, nil
	default:
		return VariantAllow, fmt.Errorf("unknown variant policy %q (expected allow, warn or reject)", s)
	}
}

// String returns the configuration spelling of the policy.
func (p VariantPolicy) String() string {
	switch p {
	case VariantWarn:
		return "warn"
	case VariantReject:
		return "reject"
	default:
		return "allow"
	}
}

// VariantCatalog is the closed set of variant names the caller understands.
// A catalog always contains NoVariant. It is read-only after construction.
type VariantCatalog struct {
	names map[Variant]struct{}
}

// NewVariantCatalog builds a catalog holding NoVariant plus the given names.
func NewVariantCatalog(names ...Variant) *VariantCatalog {
	c := &VariantCatalog{names: make(map[Variant]struct{}, len(names)+1)}
	c.names[NoVariant] = struct{}{}
	for _, n := range names {
		c.names[n] = struct{}{}
	}
	return c
}

// Contains reports whether v is in the catalog. A nil catalog only knows NoVariant.
func (c *VariantCatalog) Contains(v Variant) bool {
	if c == nil {
		return v == NoVariant
	}
	_, ok := c.names[v]
	return ok
}

// Len returns the number of names in the catalog.
func (c *VariantCatalog) Len() int {
	if c == nil {
		return 1
	}
	return len(c.names)
}

var variantIDSuffix = regexp.MustCompile(`\s*\(#\d+\)\s*$`)

// LoadVariantCatalog reads a variant list in the layout of hanab.live's
// misc/variants.txt: one name per line, optionally followed by " (#<id>)".
// Blank lines and lines starting with '#' are skipped.
//
// Postcondition: returns a catalog containing NoVariant and every listed name, or a non-nil error.
func LoadVariantCatalog(r io.Reader) (*VariantCatalog, error) {
	var names []Variant
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = variantIDSuffix.ReplaceAllString(line, "")
		names = append(names, Variant(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading variant catalog: %w", err)
	}
	return NewVariantCatalog(names...), nil
}
