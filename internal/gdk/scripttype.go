package gdk

import (
	"errors"
	"fmt"
	"strconv"
)

// ScriptType is the backend's numeric output script classification.
type ScriptType int

// Script types known to the backend.
const (
	ScriptPubkeyHashOut               ScriptType = 2
	ScriptP2SHFortifiedOut            ScriptType = 10
	ScriptP2SHP2WSHFortifiedOut       ScriptType = 14
	ScriptP2SHP2WSHCSVFortifiedOut    ScriptType = 15
	ScriptRedeemP2SHFortified         ScriptType = 150
	ScriptRedeemP2SHP2WSHFortified    ScriptType = 159
	ScriptRedeemP2SHP2WSHCSVFortified ScriptType = 162
)

var (
	// ErrUnknownScriptType indicates a value outside the backend enumeration.
	ErrUnknownScriptType = errors.New("unknown script type")

	// ErrNotWitnessScriptType indicates a known type that does not use witness signatures.
	ErrNotWitnessScriptType = errors.New("script type is not witness-bearing")
)

type scriptTypeInfo struct {
	name    string
	witness bool
}

//nolint:gochecknoglobals // Fixed backend enumeration
var scriptTypes = map[ScriptType]scriptTypeInfo{
	ScriptPubkeyHashOut:               {"pubkey_hash_out", false},
	ScriptP2SHFortifiedOut:            {"p2sh_fortified_out", false},
	ScriptP2SHP2WSHFortifiedOut:       {"p2sh_p2wsh_fortified_out", true},
	ScriptP2SHP2WSHCSVFortifiedOut:    {"p2sh_p2wsh_csv_fortified_out", true},
	ScriptRedeemP2SHFortified:         {"redeem_p2sh_fortified", false},
	ScriptRedeemP2SHP2WSHFortified:    {"redeem_p2sh_p2wsh_fortified", true},
	ScriptRedeemP2SHP2WSHCSVFortified: {"redeem_p2sh_p2wsh_csv_fortified", true},
}

// String returns the backend name of the type, or its number if unknown.
func (s ScriptType) String() string {
	if info, ok := scriptTypes[s]; ok {
		return info.name
	}
	return strconv.Itoa(int(s))
}

// Known reports whether s is in the backend enumeration.
func (s ScriptType) Known() bool {
	_, ok := scriptTypes[s]
	return ok
}

// IsWitness reports whether inputs spending s are signed with the BIP143 digest.
func (s ScriptType) IsWitness() bool {
	return scriptTypes[s].witness
}

// DefaultWitnessScriptTypes returns the signable types used when none are configured.
func DefaultWitnessScriptTypes() []ScriptType {
	return []ScriptType{
		ScriptP2SHP2WSHFortifiedOut,
		ScriptP2SHP2WSHCSVFortifiedOut,
		ScriptRedeemP2SHP2WSHFortified,
		ScriptRedeemP2SHP2WSHCSVFortified,
	}
}

// ValidateWitnessScriptTypes checks that every value is a known witness-bearing type.
func ValidateWitnessScriptTypes(types []int) error {
	for _, v := range types {
		st := ScriptType(v)
		if !st.Known() {
			return fmt.Errorf("%w: %d", ErrUnknownScriptType, v)
		}
		if !st.IsWitness() {
			return fmt.Errorf("%w: %d (%s)", ErrNotWitnessScriptType, v, st)
		}
	}
	return nil
}

// ScriptTypeSet is a set of signable script types.
type ScriptTypeSet map[ScriptType]struct{}

// NewScriptTypeSet builds a set from configured integer values.
func NewScriptTypeSet(types []int) ScriptTypeSet {
	set := make(ScriptTypeSet, len(types))
	for _, v := range types {
		set[ScriptType(v)] = struct{}{}
	}
	return set
}

// Contains reports whether s is in the set.
func (set ScriptTypeSet) Contains(s ScriptType) bool {
	_, ok := set[s]
	return ok
}
