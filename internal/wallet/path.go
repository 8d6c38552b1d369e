package wallet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/decred/dcrd/hdkeychain/v3"
)

// HardenedKeyStart is the index of the first hardened child key.
const HardenedKeyStart = hdkeychain.HardenedKeyStart

// ErrInvalidPath indicates a derivation path string could not be parsed.
var ErrInvalidPath = errors.New("invalid derivation path")

// Path is an ordered sequence of BIP32 child indices. The empty path is the master key.
type Path []uint32

// String renders the path as "m/i1/i2/..." with every index in decimal,
// hardened indices included as their raw value.
func (p Path) String() string {
	parts := make([]string, 0, len(p)+1)
	parts = append(parts, "m")
	for _, index := range p {
		parts = append(parts, strconv.FormatUint(uint64(index), 10))
	}
	return strings.Join(parts, "/")
}

// Append returns a new path with child appended, leaving p untouched.
func (p Path) Append(child ...uint32) Path {
	out := make(Path, 0, len(p)+len(child))
	out = append(out, p...)
	return append(out, child...)
}

// ParsePath parses "m/44'/1'/0" style paths. Both ' and h mark hardened indices.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "m" || s == "" {
		return Path{}, nil
	}
	if !strings.HasPrefix(s, "m/") {
		return nil, fmt.Errorf("%w: %q must start with m/", ErrInvalidPath, s)
	}

	elems := strings.Split(s[2:], "/")
	path := make(Path, 0, len(elems))
	for _, elem := range elems {
		hardened := strings.HasSuffix(elem, "'") || strings.HasSuffix(elem, "h")
		if hardened {
			elem = elem[:len(elem)-1]
		}
		index, err := strconv.ParseUint(elem, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, s)
		}
		if hardened {
			if index >= HardenedKeyStart {
				return nil, fmt.Errorf("%w: %q index out of range", ErrInvalidPath, s)
			}
			index += HardenedKeyStart
		}
		path = append(path, uint32(index))
	}
	return path, nil
}
