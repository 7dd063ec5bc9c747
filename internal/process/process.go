// Package process implements the text segmentation engine.
//
// A Processor scans text left to right with the combined pattern,
// resolves each lexical match to its owning family through the match
// package (which may veto it on context), and emits an ordered segment
// sequence. Untouched spans and vetoed matches become plain-text
// segments; the concatenation of every segment's Raw field always
// reproduces the input exactly.
//
// Results are memoized in a bounded LRU cache keyed by the exact input
// string. The cache is only valid for a fixed configuration: callers
// that rebuild the pattern set must construct a new Processor, and the
// cache must be cleared between independent documents.
package process

import (
	"unicode/utf8"

	"typograf/internal/cache"
	"typograf/internal/match"
	"typograf/internal/pattern"
	"typograf/internal/segment"
)

// DefaultCacheSize bounds the memoization cache when the caller does
// not configure one.
const DefaultCacheSize = 512

// Processor segments text using one combined pattern and memoizes the
// results. Returned slices are shared with the cache and must not be
// mutated by callers.
type Processor struct {
	combined *pattern.Combined
	cache    *cache.Cache[string, []segment.Segment]
}

// New creates a Processor for a combined pattern with the given cache
// entry limit. A limit of zero or less falls back to DefaultCacheSize.
func New(combined *pattern.Combined, cacheSize int) *Processor {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Processor{
		combined: combined,
		cache:    cache.New[string, []segment.Segment](cacheSize),
	}
}

// Process segments text into an ordered sequence of typed segments.
//
// Malformed-looking text is never an error; anything unmatched or
// vetoed degrades to plain text. Zero-width matches (possible with
// custom pattern extensions) advance the scan by one rune so the pass
// always terminates.
func (p *Processor) Process(text string) []segment.Segment {
	if text == "" {
		return nil
	}
	if segs, ok := p.cache.Get(text); ok {
		return segs
	}

	segs := p.scan(text)
	p.cache.Put(text, segs)
	return segs
}

// ClearCache drops all memoized results. Invoked between independent
// documents (route changes in the host, file changes in watch mode).
func (p *Processor) ClearCache() {
	p.cache.Clear()
}

// CacheStats returns memoization statistics.
func (p *Processor) CacheStats() cache.Stats {
	return p.cache.Stats()
}

// scan runs the uncached segmentation pass.
func (p *Processor) scan(text string) []segment.Segment {
	if p.combined == nil || p.combined.Empty() {
		return []segment.Segment{segment.PlainText(text)}
	}

	var segs []segment.Segment
	pos := 0  // scan position
	emit := 0 // start of the pending plain-text run

	for pos <= len(text) {
		m, ok := p.combined.Next(text, pos)
		if !ok {
			break
		}

		if m.End == m.Start {
			// zero-width match: step over one rune, never stall
			_, w := utf8.DecodeRuneInString(text[m.Start:])
			if w == 0 {
				break
			}
			pos = m.Start + w
			continue
		}

		out, accepted := p.resolve(text, m)
		pos = m.End
		if !accepted {
			// contextual veto: the span stays inside the pending
			// plain-text run and is re-emitted verbatim
			continue
		}

		if m.Start > emit {
			segs = appendSeg(segs, segment.PlainText(text[emit:m.Start]))
		}
		for _, s := range out {
			segs = appendSeg(segs, s)
		}
		emit = m.End
	}

	if emit < len(text) {
		segs = appendSeg(segs, segment.PlainText(text[emit:]))
	}
	return segs
}

// resolve maps a lexical match to family-specific segments, applying
// the second-stage contextual checks. A false result means the match
// was vetoed or did not conform to the family's exact shape; the caller
// re-emits the span as plain text. No family's failure affects any
// other match in the same text.
func (p *Processor) resolve(text string, m pattern.Match) ([]segment.Segment, bool) {
	token := text[m.Start:m.End]

	switch m.Family {
	case segment.Trademark, segment.Registered, segment.Copyright:
		sym := match.Symbol(token)
		if sym == "" {
			return nil, false
		}
		return []segment.Segment{
			{Kind: segment.Symbol, Family: m.Family, Content: sym, Raw: token},
		}, true

	case segment.Ordinal:
		f := match.ExtractOrdinal(token)
		if f == nil {
			return nil, false
		}
		return []segment.Segment{
			segment.PlainText(f.Number),
			{Kind: segment.Super, Family: segment.Ordinal, Content: f.Suffix, Raw: f.Suffix},
		}, true

	case segment.Chemical:
		if !match.AllowChemical(text, m.Start, m.End) {
			return nil, false
		}
		f := match.ExtractChemical(token)
		if f == nil {
			return nil, false
		}
		return []segment.Segment{
			segment.PlainText(f.Element),
			{Kind: segment.Sub, Family: segment.Chemical, Content: f.Count, Raw: f.Count},
		}, true

	case segment.MathSuper, segment.MathSub:
		if !match.AllowMath(text, m.Start) {
			return nil, false
		}
		f := match.ExtractMath(token)
		if f == nil {
			return nil, false
		}
		kind := segment.Super
		if f.Marker == '_' {
			kind = segment.Sub
		}
		return []segment.Segment{
			segment.PlainText(f.Variable),
			{Kind: kind, Family: m.Family, Content: f.Script, Raw: f.ScriptRaw},
		}, true

	default:
		// custom family: wrap the literal match
		return []segment.Segment{
			{Kind: segment.Symbol, Family: m.Family, Content: token, Raw: token},
		}, true
	}
}

// appendSeg appends a segment, coalescing adjacent plain-text segments
// so callers see "Water is H" as one piece rather than two.
func appendSeg(segs []segment.Segment, s segment.Segment) []segment.Segment {
	if n := len(segs); n > 0 && s.Kind == segment.Text && segs[n-1].Kind == segment.Text {
		segs[n-1].Content += s.Content
		segs[n-1].Raw += s.Raw
		return segs
	}
	return append(segs, s)
}
