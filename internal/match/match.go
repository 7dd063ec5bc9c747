// Package match provides the per-family predicates, field extractors,
// and contextual vetoes that resolve a lexical match to its owning
// family.
//
// Alternation order in the combined pattern is necessary but not
// sufficient: a token can match a family's shape and still be ordinary
// prose in context (the HTML heading label "H2" versus the formula
// "H2O", the identifier "ABC" versus the variable in "E=mc^2"). Each
// family therefore gets a second-stage check that can veto the lexical
// match; a vetoed span degrades to plain text.
//
// Extractors return nil when the input does not conform to the family's
// exact shape. That is a normal negative result, never an error.
package match

import "regexp"

var (
	ordinalRe   = regexp.MustCompile(`^(\d+)(st|nd|rd|th)$`)
	chemicalRe  = regexp.MustCompile(`^([A-Z][a-z]?)(\d+)$`)
	mathRe      = regexp.MustCompile(`^([A-Za-z])([\^_])(?:(\d+)|\{([^{}]+)\})$`)
	symbolForms = map[string]string{
		"™": "™", "(TM)": "™",
		"®": "®", "(R)": "®",
		"©": "©", "(C)": "©",
	}
)

// OrdinalFields are the structural parts of an ordinal token.
type OrdinalFields struct {
	Number string
	Suffix string
}

// ChemicalFields are the structural parts of a chemical-formula token.
type ChemicalFields struct {
	Element string
	Count   string
}

// MathFields are the structural parts of a math sub/superscript token.
type MathFields struct {
	Variable string
	// Marker is '^' or '_'
	Marker byte
	// Script is the rendered script content (digits, or the text inside
	// braces); ScriptRaw is the consumed source including marker and
	// braces, e.g. "^{10}".
	Script    string
	ScriptRaw string
}

// IsOrdinal reports whether token has the ordinal shape: digits followed
// by st/nd/rd/th. Numeric/suffix agreement is not validated; "1nd" is a
// valid ordinal token by design.
func IsOrdinal(token string) bool {
	return ordinalRe.MatchString(token)
}

// ExtractOrdinal pulls the number and suffix out of an ordinal token,
// or returns nil if token does not have the ordinal shape.
func ExtractOrdinal(token string) *OrdinalFields {
	m := ordinalRe.FindStringSubmatch(token)
	if m == nil {
		return nil
	}
	return &OrdinalFields{Number: m[1], Suffix: m[2]}
}

// IsChemical reports whether token has the element-symbol shape: one
// uppercase letter, an optional lowercase letter, then digits. Two
// consecutive uppercase letters never form one token ("CO2" is "C"
// followed by "O2").
func IsChemical(token string) bool {
	return chemicalRe.MatchString(token)
}

// ExtractChemical pulls the element symbol and count out of a chemical
// token, or returns nil if token does not conform.
func ExtractChemical(token string) *ChemicalFields {
	m := chemicalRe.FindStringSubmatch(token)
	if m == nil {
		return nil
	}
	return &ChemicalFields{Element: m[1], Count: m[2]}
}

// AllowChemical is the contextual check for a chemical match at
// text[start:end].
//
// The literal tokens H1 through H6 standing alone are HTML heading
// labels, not chemistry, and are vetoed. "Standing alone" means not
// immediately followed by a further uppercase letter: H2O and H2SO4
// still transform, as do H7 and above.
func AllowChemical(text string, start, end int) bool {
	f := ExtractChemical(text[start:end])
	if f == nil {
		return false
	}
	if f.Element != "H" {
		return true
	}
	if len(f.Count) != 1 || f.Count[0] < '1' || f.Count[0] > '6' {
		return true
	}
	// heading label unless a capital letter continues the formula
	if end < len(text) && text[end] >= 'A' && text[end] <= 'Z' {
		return true
	}
	return false
}

// IsMathSuper reports whether token has the superscript shape.
func IsMathSuper(token string) bool {
	m := mathRe.FindStringSubmatch(token)
	return m != nil && m[2] == "^"
}

// IsMathSub reports whether token has the subscript shape.
func IsMathSub(token string) bool {
	m := mathRe.FindStringSubmatch(token)
	return m != nil && m[2] == "_"
}

// ExtractMath pulls the variable and script out of a math token
// (either marker), or returns nil if token does not conform.
func ExtractMath(token string) *MathFields {
	m := mathRe.FindStringSubmatch(token)
	if m == nil {
		return nil
	}
	script := m[3]
	if script == "" {
		script = m[4]
	}
	return &MathFields{
		Variable:  m[1],
		Marker:    m[2][0],
		Script:    script,
		ScriptRaw: token[1:],
	}
}

// AllowMath is the contextual check for a math match whose variable
// sits at text[start].
//
// An uppercase variable is presumed to be a programming/identifier
// context and vetoed unless the preceding character is a lowercase
// letter or an equals sign. "E=mc^2" transforms the c^2 portion;
// "ABC^2" and a bare "X^2" stay literal.
func AllowMath(text string, start int) bool {
	v := text[start]
	if v >= 'a' && v <= 'z' {
		return true
	}
	if start == 0 {
		return false
	}
	prev := text[start-1]
	return (prev >= 'a' && prev <= 'z') || prev == '='
}

// Symbol maps a trademark/registered/copyright token to its replacement
// character. The textual forms (TM), (R), (C) normalize to the symbol;
// returns "" for unrecognized tokens.
func Symbol(token string) string {
	return symbolForms[token]
}
