// Package apply walks an HTML tree's text nodes and splices in the
// inline elements produced by the text processor.
//
// Two entry points run the same traversal over the same node
// operations: Document is the pure string-in/string-out server path,
// Subtree mutates a live goquery document in place. Both produce
// identical segment sequences, elements, classes, and labels for
// identical input text.
package apply

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"typograf/internal/process"
	"typograf/internal/segment"
)

// MarkerAttr is the processed-marker attribute. The document root and
// every transformed include root carry MarkerDone; every produced
// inline element carries MarkerElem. Appliers check the marker before
// processing, so a second pass over transformed content is a no-op.
const (
	MarkerAttr = "data-typograf"
	MarkerDone = "done"
	MarkerElem = "1"
)

// skipTags are element names whose subtrees are never transformed,
// independent of the configured exclude selectors.
var skipTags = map[string]bool{
	"code": true, "pre": true, "kbd": true, "samp": true, "var": true,
	"script": true, "style": true, "textarea": true,
	"math": true, "svg": true,
}

// ariaSymbol maps symbol families to their accessibility labels.
var ariaSymbol = map[segment.Family]string{
	segment.Trademark:  "trademark",
	segment.Registered: "registered trademark",
	segment.Copyright:  "copyright",
}

// cssName maps family names onto class-name suffixes.
var cssName = map[segment.Family]string{
	segment.MathSuper: "math-sup",
	segment.MathSub:   "math-sub",
}

// Applier transforms the text nodes of subtrees selected by the
// include selectors, pruning excluded and already-processed regions.
type Applier struct {
	proc    *process.Processor
	include cascadia.SelectorGroup
	exclude cascadia.SelectorGroup
}

// New builds an Applier from include/exclude selector lists. At least
// one include selector is required; selector syntax errors are fatal
// here with the offending list named.
func New(proc *process.Processor, include, exclude []string) (*Applier, error) {
	if proc == nil {
		return nil, fmt.Errorf("nil processor")
	}
	if len(include) == 0 {
		return nil, fmt.Errorf("include selectors: at least one selector is required")
	}
	inc, err := cascadia.ParseGroup(strings.Join(include, ", "))
	if err != nil {
		return nil, fmt.Errorf("include selectors: %w", err)
	}
	a := &Applier{proc: proc, include: inc}
	if len(exclude) > 0 {
		exc, err := cascadia.ParseGroup(strings.Join(exclude, ", "))
		if err != nil {
			return nil, fmt.Errorf("exclude selectors: %w", err)
		}
		a.exclude = exc
	}
	return a, nil
}

// Document transforms a serialized HTML document and returns the
// transformed markup. The transformation is all-or-nothing: on any
// parse or serialization failure the original markup is returned
// alongside the error. A document already carrying the processed
// marker is returned unchanged.
func (a *Applier) Document(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return markup, fmt.Errorf("failed to parse markup: %w", err)
	}

	root := documentElement(doc)
	if root != nil && getAttr(root, MarkerAttr) == MarkerDone {
		return markup, nil
	}

	a.applyTree(doc)
	if root != nil {
		setAttr(root, MarkerAttr, MarkerDone)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return markup, fmt.Errorf("failed to serialize transformed markup: %w", err)
	}
	return buf.String(), nil
}

// Subtree transforms a live goquery document in place and returns the
// number of text nodes that were rewritten. A document already carrying
// the processed marker is left untouched.
func (a *Applier) Subtree(doc *goquery.Document) (int, error) {
	if doc == nil {
		return 0, fmt.Errorf("nil document")
	}
	node := doc.Get(0)
	if node == nil {
		return 0, fmt.Errorf("document has no root node")
	}

	root := documentElement(node)
	if root != nil && getAttr(root, MarkerAttr) == MarkerDone {
		return 0, nil
	}

	n := a.applyTree(node)
	if root != nil {
		setAttr(root, MarkerAttr, MarkerDone)
	}
	return n, nil
}

// applyTree finds include roots in document order and transforms each,
// stamping the per-root marker.
func (a *Applier) applyTree(root *html.Node) int {
	count := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if n.Type == html.ElementNode {
			if skipTags[n.Data] || a.excluded(n) || getAttr(n, MarkerAttr) != "" {
				return
			}
			if a.include.Match(n) {
				count += a.transform(n)
				setAttr(n, MarkerAttr, MarkerDone)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return count
}

// transform rewrites the text nodes under one include root, pruning
// skip tags, excluded elements, and already-processed subtrees.
func (a *Applier) transform(root *html.Node) int {
	count := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n != root && n.Type == html.ElementNode {
			if skipTags[n.Data] || a.excluded(n) || getAttr(n, MarkerAttr) != "" {
				return
			}
		}

		// snapshot children: splicing replaces text nodes in place and
		// the produced nodes must not be revisited
		var kids []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			kids = append(kids, c)
		}
		for _, c := range kids {
			switch c.Type {
			case html.TextNode:
				if a.replaceText(c) {
					count++
				}
			case html.ElementNode:
				walk(c)
			}
		}
	}
	walk(root)
	return count
}

// replaceText segments one text node and, if anything transformed,
// splices the materialized nodes into its place preserving sibling
// order. Detached nodes are skipped rather than aborting the walk.
func (a *Applier) replaceText(n *html.Node) bool {
	if n.Parent == nil {
		return false
	}
	segs := a.proc.Process(n.Data)
	if !transformed(segs) {
		return false
	}
	for _, s := range segs {
		n.Parent.InsertBefore(materialize(s), n)
	}
	n.Parent.RemoveChild(n)
	return true
}

// transformed reports whether a segment sequence contains anything
// beyond plain text.
func transformed(segs []segment.Segment) bool {
	for _, s := range segs {
		if s.Kind != segment.Text {
			return true
		}
	}
	return false
}

// materialize turns one segment into a DOM node.
//
// Element choice is fixed per family: superscript-bearing segments emit
// <sup>, subscript-bearing segments emit <sub>, and symbol segments
// emit a positioned inline <span> so CSS can place the mark
// independently. Every produced element carries the family class, an
// accessibility label, and the element-level processed marker.
func materialize(s segment.Segment) *html.Node {
	if s.Kind == segment.Text {
		return &html.Node{Type: html.TextNode, Data: s.Content}
	}

	var tag string
	var at atom.Atom
	var label string
	switch s.Kind {
	case segment.Super:
		tag, at, label = "sup", atom.Sup, "superscript"
	case segment.Sub:
		tag, at, label = "sub", atom.Sub, "subscript"
	default:
		tag, at = "span", atom.Span
		label = ariaSymbol[s.Family]
		if label == "" {
			label = string(s.Family)
		}
	}

	el := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: at,
		Attr: []html.Attribute{
			{Key: "class", Val: ClassName(s.Family)},
			{Key: "aria-label", Val: label},
			{Key: MarkerAttr, Val: MarkerElem},
		},
	}
	el.AppendChild(&html.Node{Type: html.TextNode, Data: s.Content})
	return el
}

// ClassName returns the stable per-family class carried by produced
// elements, e.g. "typograf-trademark" or "typograf-math-sup".
func ClassName(f segment.Family) string {
	if n, ok := cssName[f]; ok {
		return "typograf-" + n
	}
	return "typograf-" + string(f)
}

// excluded reports whether n matches the configured exclude selectors.
func (a *Applier) excluded(n *html.Node) bool {
	return a.exclude != nil && a.exclude.Match(n)
}

// documentElement finds the root <html> element under a document node,
// or returns n itself when it is already an element (fragment roots).
func documentElement(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
