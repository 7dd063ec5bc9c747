// Package segment defines the typed output of the text processor.
// A processed string becomes an ordered sequence of segments whose Raw
// fields concatenate back to the original input exactly.
package segment

// Family identifies one category of recognized token.
type Family string

const (
	Trademark  Family = "trademark"
	Registered Family = "registered"
	Copyright  Family = "copyright"
	Ordinal    Family = "ordinal"
	Chemical   Family = "chemical"
	MathSuper  Family = "mathSuper"
	MathSub    Family = "mathSub"
)

// Builtin lists the built-in families in alternation priority order.
// Earlier families win ties at the same start offset.
func Builtin() []Family {
	return []Family{Trademark, Registered, Copyright, Ordinal, Chemical, MathSuper, MathSub}
}

// Kind defines the kind of a segment
type Kind int

const (
	// plain text, emitted verbatim
	Text Kind = iota
	// superscript content (ordinal suffix, math exponent)
	Super
	// subscript content (chemical count, math index)
	Sub
	// literal symbol replacement (™, ®, ©)
	Symbol
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Text:
		return "Text"
	case Super:
		return "Super"
	case Sub:
		return "Sub"
	case Symbol:
		return "Symbol"
	default:
		return "Unknown"
	}
}

// Segment is one typed piece of processed output.
//
// Content is what renders (inside a sup/sub/span element for non-text
// kinds). Raw is the exact slice of the source string this segment
// consumed; it differs from Content only where delimiters are consumed
// (the ^/_ and braces of math notation, the parenthesized textual forms
// of symbol marks). Family is empty for plain-text segments.
type Segment struct {
	Kind    Kind
	Family  Family
	Content string
	Raw     string
}

// PlainText builds a plain-text segment where Raw equals Content.
func PlainText(s string) Segment {
	return Segment{Kind: Text, Content: s, Raw: s}
}

// Concat returns the concatenation of every segment's Raw field.
// For any sequence produced by the processor this reproduces the
// original input string.
func Concat(segs []Segment) string {
	n := 0
	for _, s := range segs {
		n += len(s.Raw)
	}
	b := make([]byte, 0, n)
	for _, s := range segs {
		b = append(b, s.Raw...)
	}
	return string(b)
}
