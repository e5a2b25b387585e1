package ability

import (
	"fmt"
	"math/bits"
	"strings"
)

// Alignment is one of the nine character alignments.
type Alignment uint8

const (
	LG Alignment = iota
	NG
	CG
	LN
	N
	CN
	LE
	NE
	CE
	numAlignments
)

var alignmentNames = [numAlignments]string{"LG", "NG", "CG", "LN", "N", "CN", "LE", "NE", "CE"}

func (al Alignment) String() string {
	if al >= numAlignments {
		return "?"
	}
	return alignmentNames[al]
}

// ParseAlignment maps an abbreviation such as "LE" to its Alignment.
func ParseAlignment(s string) (Alignment, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range alignmentNames {
		if name == s {
			return Alignment(i), nil
		}
	}
	return 0, fmt.Errorf("unknown alignment %q", s)
}

// AlignmentSet is a set of alignments.
type AlignmentSet uint16

// AllAlignments contains all nine alignments.
const AllAlignments AlignmentSet = 1<<numAlignments - 1

// NewAlignmentSet builds a set from its members.
func NewAlignmentSet(members ...Alignment) AlignmentSet {
	var s AlignmentSet
	for _, m := range members {
		s = s.With(m)
	}
	return s
}

func (s AlignmentSet) Has(al Alignment) bool { return s&(1<<al) != 0 }

func (s AlignmentSet) With(al Alignment) AlignmentSet { return s | 1<<al }

func (s AlignmentSet) Without(al Alignment) AlignmentSet { return s &^ (1 << al) }

func (s AlignmentSet) Len() int { return bits.OnesCount16(uint16(s & AllAlignments)) }

// Members lists the set in canonical LG..CE order.
func (s AlignmentSet) Members() []Alignment {
	var out []Alignment
	for al := LG; al < numAlignments; al++ {
		if s.Has(al) {
			out = append(out, al)
		}
	}
	return out
}

// Effective is the set as it can be written: excluding every alignment is not
// expressible and behaves like excluding none.
func (s AlignmentSet) Effective() AlignmentSet {
	s &= AllAlignments
	if s == AllAlignments {
		return 0
	}
	return s
}

func (s AlignmentSet) String() string {
	names := make([]string, 0, s.Len())
	for _, al := range s.Members() {
		names = append(names, al.String())
	}
	return strings.Join(names, ",")
}
