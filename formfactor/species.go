// Package formfactor defines the closed species enumeration used throughout
// the histogram and Debye-transform packages, together with the
// Cromer-Mann-style form factor curves each species indexes into.
//
// The species tag is used purely as an array index: dispatch on it is O(1)
// table lookup, never a type switch or virtual call, so it is safe to use in
// the innermost distance-binning loop.
package formfactor

import "fmt"

// Species is a closed enumeration of the scattering-relevant atomic/group
// tags. The zero value is H; UNKNOWN and EXCLUDED_VOLUME are reserved tags
// at the end of the normal element range so a dense [Count]T array can still
// be indexed directly by a valid Species.
type Species int

const (
	H Species = iota
	C
	N
	O
	S
	CH
	CH2
	CH3
	NH
	NH2
	NH3
	OH
	SH
	OTHER
	EXCLUDED_VOLUME
	UNKNOWN

	// Count is the number of addressable species, including EXCLUDED_VOLUME
	// but excluding UNKNOWN (UNKNOWN never indexes a table; see Valid).
	Count = UNKNOWN
)

// String renders the species as its conventional chemical shorthand.
func (s Species) String() string {
	switch s {
	case H:
		return "H"
	case C:
		return "C"
	case N:
		return "N"
	case O:
		return "O"
	case S:
		return "S"
	case CH:
		return "CH"
	case CH2:
		return "CH2"
	case CH3:
		return "CH3"
	case NH:
		return "NH"
	case NH2:
		return "NH2"
	case NH3:
		return "NH3"
	case OH:
		return "OH"
	case SH:
		return "SH"
	case OTHER:
		return "OTHER"
	case EXCLUDED_VOLUME:
		return "EXCLUDED_VOLUME"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Valid reports whether s can be used as an index into a [Count]T table.
func (s Species) Valid() bool {
	return s >= H && s < Count
}
