// Package toolchain parses host toolchain versions and rejects hosts older
// than the minimum the pipeline supports.
package toolchain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Version is a (major, minor, patch) triple. Missing components are zero.
type Version struct {
	Major int
	Minor int
	Patch int
}

// MinimumSupported is the oldest host toolchain the pipeline runs on.
var MinimumSupported = Version{Major: 3, Minor: 3, Patch: 9}

// ParseError reports a version string with a non-numeric component.
type ParseError struct {
	Input   string
	Segment string
	Index   int
	Err     error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, strconv.ErrRange) {
		return fmt.Sprintf("invalid toolchain version %q: segment %d (%q) is out of range", e.Input, e.Index, e.Segment)
	}
	return fmt.Sprintf("invalid toolchain version %q: segment %d (%q) is not numeric", e.Input, e.Index, e.Segment)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads up to three dot-separated numeric segments. Segments beyond the
// third are ignored; absent ones stay zero. Each segment must fit in 32 bits.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	var nums [3]int
	for i := 0; i < len(parts) && i < len(nums); i++ {
		n, err := strconv.ParseInt(parts[i], 10, 32)
		if err != nil {
			return Version{}, &ParseError{Input: s, Segment: parts[i], Index: i, Err: err}
		}
		nums[i] = int(n)
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Number folds the triple into the single comparable integer
// major*1_000_000 + minor*1000 + patch. Segments parsed by Parse never
// overflow it.
func (v Version) Number() int64 {
	return int64(v.Major)*1_000_000 + int64(v.Minor)*1000 + int64(v.Patch)
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return v.Number() < other.Number()
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
