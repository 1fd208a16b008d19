package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Dance identifies one of the ten competition dances.
// The string values are the stable identifiers used in persisted records.
type Dance string

// The ten dances in canonical order: the five Standard dances followed by
// the five Latin dances.
const (
	SlowWaltz     Dance = "slow_waltz"
	Tango         Dance = "tango"
	VienneseWaltz Dance = "viennese_waltz"
	SlowFoxtrot   Dance = "slow_foxtrot"
	Quickstep     Dance = "quickstep"
	Samba         Dance = "samba"
	ChaChaCha     Dance = "cha_cha_cha"
	Rumba         Dance = "rumba"
	PasoDoble     Dance = "paso_doble"
	Jive          Dance = "jive"
)

var canonicalDances = [...]Dance{
	SlowWaltz, Tango, VienneseWaltz, SlowFoxtrot, Quickstep,
	Samba, ChaChaCha, Rumba, PasoDoble, Jive,
}

// AllDances returns every dance in canonical order.
func AllDances() []Dance { return slices.Clone(canonicalDances[:]) }

// StandardDances returns the default Standard dance set.
func StandardDances() []Dance { return slices.Clone(canonicalDances[:5]) }

// LatinDances returns the default Latin dance set.
func LatinDances() []Dance { return slices.Clone(canonicalDances[5:]) }

// Index returns the position of d in canonical order, or -1 for an unknown dance.
func (d Dance) Index() int {
	for i, c := range canonicalDances {
		if c == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the ten known dances.
func (d Dance) Valid() bool { return d.Index() >= 0 }

// String implements fmt.Stringer.
func (d Dance) String() string { return string(d) }

// SortDances sorts dances in place by canonical order.
func SortDances(dances []Dance) {
	slices.SortFunc(dances, func(a, b Dance) int { return a.Index() - b.Index() })
}

// ParseDance resolves a canonical dance identifier.
func ParseDance(s string) (Dance, error) {
	d := Dance(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: dance %q", ErrUnknownValue, s)
	}
	return d, nil
}

// Level is the skill tier of a competition.
type Level string

// Levels from lowest to highest.
const (
	LevelE Level = "E"
	LevelD Level = "D"
	LevelC Level = "C"
	LevelB Level = "B"
	LevelA Level = "A"
	LevelS Level = "S"
)

// Levels returns every level, lowest first.
func Levels() []Level { return []Level{LevelE, LevelD, LevelC, LevelB, LevelA, LevelS} }

// Valid reports whether l is a known level.
func (l Level) Valid() bool { return slices.Contains(Levels(), l) }

// ParseLevel resolves a level identifier case-insensitively.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: level %q", ErrUnknownValue, s)
	}
	return l, nil
}

// Style is the dance discipline of a competition.
type Style string

const (
	StyleStandard Style = "std"
	StyleLatin    Style = "lat"
)

// Styles returns both styles.
func Styles() []Style { return []Style{StyleStandard, StyleLatin} }

// Valid reports whether s is a known style.
func (s Style) Valid() bool { return s == StyleStandard || s == StyleLatin }

// DefaultDances returns the dances contested by default in this style.
func (s Style) DefaultDances() []Dance {
	switch s {
	case StyleStandard:
		return StandardDances()
	case StyleLatin:
		return LatinDances()
	default:
		return nil
	}
}

// ParseStyle resolves a style identifier. Both the short identifiers and
// the spelled-out names are accepted.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "std", "standard":
		return StyleStandard, nil
	case "lat", "latin", "latein":
		return StyleLatin, nil
	}
	return "", fmt.Errorf("%w: style %q", ErrUnknownValue, s)
}

// AgeGroup is the competitor age bracket.
type AgeGroup string

const (
	Juv1   AgeGroup = "juv_1"
	Juv2   AgeGroup = "juv_2"
	Jun1   AgeGroup = "jun_1"
	Jun2   AgeGroup = "jun_2"
	Youth  AgeGroup = "youth"
	Adult  AgeGroup = "adult"
	Adult2 AgeGroup = "adult_2"
	Sen1   AgeGroup = "sen_1"
	Sen2   AgeGroup = "sen_2"
	Sen3   AgeGroup = "sen_3"
	Sen4   AgeGroup = "sen_4"
	Sen5   AgeGroup = "sen_5"
	Senior AgeGroup = "senior"
)

// AgeGroups returns every age group, youngest first.
func AgeGroups() []AgeGroup {
	return []AgeGroup{Juv1, Juv2, Jun1, Jun2, Youth, Adult, Adult2, Sen1, Sen2, Sen3, Sen4, Sen5, Senior}
}

// Valid reports whether a is a known age group.
func (a AgeGroup) Valid() bool { return slices.Contains(AgeGroups(), a) }

// ParseAgeGroup resolves an age group identifier case-insensitively.
func ParseAgeGroup(s string) (AgeGroup, error) {
	a := AgeGroup(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: age group %q", ErrUnknownValue, s)
	}
	return a, nil
}

// IdentityKind distinguishes solo competitors from couples.
type IdentityKind string

const (
	Solo   IdentityKind = "solo"
	Couple IdentityKind = "couple"
)

// Valid reports whether k is a known identity kind.
func (k IdentityKind) Valid() bool { return k == Solo || k == Couple }
