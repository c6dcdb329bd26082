// Package version implements the comparable Version value used throughout
// the installer: a release from a source is tagged either Semantic
// (major.minor.patch, e.g. GitHub tags like "v1.4.2") or Integer (a bare
// release/asset id, e.g. a numeric GitHub release id used as a stand-in
// version when a package has no semver tags).
package version

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Kind distinguishes the two Version variants.
type Kind int

const (
	// KindSemantic is a parsed major.minor.patch version.
	KindSemantic Kind = iota
	// KindInteger is a bare integer version (e.g. a GitHub release id).
	KindInteger
)

// Version is a tagged union over the two ways a release source can
// identify a release. Exactly one of the semantic or integer fields is
// meaningful, selected by Kind.
type Version struct {
	Kind Kind

	// semantic holds the parsed version when Kind == KindSemantic.
	semantic *semver.Version
	// raw preserves the original string form, used when re-printing a
	// Semantic version that semver.Version would otherwise normalize away
	// (e.g. a leading "v").
	raw string

	// integer holds the value when Kind == KindInteger.
	integer int64
}

// Semantic builds a Version from already-known major/minor/patch components.
func Semantic(major, minor, patch uint64) Version {
	v := semver.New(major, minor, patch, "", "")
	return Version{Kind: KindSemantic, semantic: v, raw: v.String()}
}

// Integer builds a Version from a bare integer (e.g. a release id).
func Integer(n int64) Version {
	return Version{Kind: KindInteger, integer: n}
}

// Parse interprets s as a Version. It first tries integer parsing (a bare
// "42"), then falls back to semantic parsing (accepting a leading "v").
// Integer parsing only succeeds for strings that contain nothing but an
// optional sign and digits, so "v1.2.3" is never mistaken for an integer.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, fmt.Errorf("version: empty string")
	}

	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Integer(n), nil
	}

	sv, err := semver.NewVersion(strings.TrimPrefix(trimmed, "v"))
	if err != nil {
		return Version{}, fmt.Errorf("version: %q is neither an integer nor a semantic version: %w", s, err)
	}
	return Version{Kind: KindSemantic, semantic: sv, raw: trimmed}, nil
}

// ParseInt builds an Integer Version directly from a release/asset id, the
// shape the GitHub release source uses (spec §4.2: "id" as an integer
// Version).
func ParseInt(n int64) Version {
	return Integer(n)
}

// String renders the canonical string form used for JSON and display.
func (v Version) String() string {
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindSemantic:
		if v.semantic == nil {
			return ""
		}
		if v.raw != "" {
			return v.raw
		}
		return v.semantic.String()
	default:
		return ""
	}
}

// Int returns the integer value; only meaningful when Kind == KindInteger.
func (v Version) Int() int64 {
	return v.integer
}

// Semver returns the underlying semver.Version; only meaningful when
// Kind == KindSemantic.
func (v Version) Semver() *semver.Version {
	return v.semantic
}

// orderInteger and orderSemantic are the documented, explicit resolution of the open
// question in spec.md §9: when a Semantic and an Integer version are
// compared directly, Integer always sorts before Semantic. This only
// matters for malformed/mixed catalogs; a well-formed PackageSource's
// handler always yields one variant consistently.
const (
	orderInteger = 0
	orderSemantic = 1
)

func order(k Kind) int {
	if k == KindInteger {
		return orderInteger
	}
	return orderSemantic
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other. Within a variant it uses natural order (numeric for Integer,
// semver precedence for Semantic); across variants it uses the documented
// cross-variant order above.
func (v Version) Compare(other Version) int {
	if v.Kind != other.Kind {
		a, b := order(v.Kind), order(other.Kind)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}

	switch v.Kind {
	case KindInteger:
		switch {
		case v.integer < other.integer:
			return -1
		case v.integer > other.integer:
			return 1
		default:
			return 0
		}
	case KindSemantic:
		if v.semantic == nil || other.semantic == nil {
			return strings.Compare(v.String(), other.String())
		}
		return v.semantic.Compare(other.semantic)
	default:
		return 0
	}
}

// LessThan reports whether v sorts strictly before other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// MarshalJSON serializes a Version as an integer JSON number for
// KindInteger and as its canonical string for KindSemantic, per
// spec.md §6: "Version is encoded as either an integer JSON number or a
// semantic-version string depending on the variant."
func (v Version) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInteger:
		return json.Marshal(v.integer)
	case KindSemantic:
		return json.Marshal(v.String())
	default:
		return json.Marshal(nil)
	}
}

// UnmarshalJSON accepts both encodings: a bare JSON number becomes an
// Integer Version, a JSON string is interpreted by Parse (an all-digit
// string such as "42" becomes an Integer Version, anything else a
// Semantic version with an optional leading "v").
func (v *Version) UnmarshalJSON(data []byte) error {
	var asInt int64
	if err := json.Unmarshal(data, &asInt); err == nil {
		*v = Integer(asInt)
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("version: cannot decode %s as integer or string: %w", data, err)
	}

	parsed, err := Parse(asString)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Max returns the element of versions that compares greatest, and true, or
// the zero Version and false if versions is empty. Ties resolve to the
// first maximal element encountered (spec.md §8 property 3: stable
// tie-break).
func Max(versions []Version) (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if v.Compare(best) > 0 {
			best = v
		}
	}
	return best, true
}
