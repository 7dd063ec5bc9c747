package apply_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"typograf/internal/apply"
	"typograf/internal/pattern"
	"typograf/internal/process"
	"typograf/internal/segment"
)

const pageHTML = `<!DOCTYPE html>
<html>
<head><title>Chemistry 101</title></head>
<body>
	<h1>Intro</h1>
	<p>Water is H2O and the 21st element is Sc.</p>
	<p>Einstein wrote E=mc^2. Acme™ agrees.</p>
	<pre>keep H2O as-is</pre>
	<p><code>x^2</code> stays literal</p>
	<div class="notes" data-typograf-skip>H2O here is skipped</div>
</body>
</html>`

func newApplier(t *testing.T, include, exclude []string) *apply.Applier {
	t.Helper()
	set, err := pattern.Build(pattern.Options{
		Trademark:  true,
		Registered: true,
		Copyright:  true,
		Ordinal:    true,
		Chemical:   true,
		MathSuper:  true,
		MathSub:    true,
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	combined, err := set.Combine()
	if err != nil {
		t.Fatalf("Combine() error: %v", err)
	}
	a, err := apply.New(process.New(combined, 0), include, exclude)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return a
}

func TestDocument(t *testing.T) {
	a := newApplier(t, []string{"body"}, []string{"[data-typograf-skip]"})

	out, err := a.Document(pageHTML)
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}

	contains := []string{
		`Water is H<sub class="typograf-chemical" aria-label="subscript" data-typograf="1">2</sub>O`,
		`the 21<sup class="typograf-ordinal" aria-label="superscript" data-typograf="1">st</sup> element`,
		`E=mc<sup class="typograf-math-sup" aria-label="superscript" data-typograf="1">2</sup>`,
		`Acme<span class="typograf-trademark" aria-label="trademark" data-typograf="1">™</span>`,
		// code blocks and excluded regions stay untouched
		`<pre>keep H2O as-is</pre>`,
		`<code>x^2</code>`,
		`H2O here is skipped`,
		// document-level processed marker
		`<html data-typograf="done">`,
	}
	for _, want := range contains {
		if !strings.Contains(out, want) {
			t.Errorf("Document() output missing %q\noutput: %s", want, out)
		}
	}

	if strings.Contains(out, `<sub class="typograf-chemical" aria-label="subscript" data-typograf="1">2</sub>O here is skipped`) {
		t.Error("excluded region was transformed")
	}
}

func TestDocumentIdempotent(t *testing.T) {
	a := newApplier(t, []string{"body"}, nil)

	once, err := a.Document(pageHTML)
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}
	twice, err := a.Document(once)
	if err != nil {
		t.Fatalf("second Document() error: %v", err)
	}

	if twice != once {
		t.Error("second application mutated already-processed markup")
	}
	if got := strings.Count(twice, `<html data-typograf="done"`); got != 1 {
		t.Errorf("document marker appears %d times, want exactly 1", got)
	}
}

func TestDocumentInvalidSelectors(t *testing.T) {
	set, _ := pattern.Build(pattern.Options{Ordinal: true})
	combined, _ := set.Combine()
	proc := process.New(combined, 0)

	if _, err := apply.New(proc, []string{"p["}, nil); err == nil {
		t.Error("New() accepted a malformed include selector")
	}
	if _, err := apply.New(proc, []string{"body"}, []string{"p["}); err == nil {
		t.Error("New() accepted a malformed exclude selector")
	}
	if _, err := apply.New(proc, nil, nil); err == nil {
		t.Error("New() accepted an empty include list")
	}
}

func TestIncludeSelectorScoping(t *testing.T) {
	a := newApplier(t, []string{"p.transform"}, nil)

	const doc = `<html><body>
	<p class="transform">Water is H2O</p>
	<p>Leave H2O alone</p>
	</body></html>`

	out, err := a.Document(doc)
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}
	if !strings.Contains(out, `Water is H<sub`) {
		t.Error("included paragraph was not transformed")
	}
	if !strings.Contains(out, `Leave H2O alone`) {
		t.Error("paragraph outside the include set was transformed")
	}
}

func TestSubtreeMatchesDocument(t *testing.T) {
	// the server (string) path and the live (goquery) path must agree
	a := newApplier(t, []string{"body"}, []string{"[data-typograf-skip]"})

	server, err := a.Document(pageHTML)
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		t.Fatalf("goquery parse error: %v", err)
	}
	n, err := a.Subtree(doc)
	if err != nil {
		t.Fatalf("Subtree() error: %v", err)
	}
	if n == 0 {
		t.Fatal("Subtree() transformed no text nodes")
	}

	var buf strings.Builder
	if err := html.Render(&buf, doc.Get(0)); err != nil {
		t.Fatalf("render error: %v", err)
	}

	if buf.String() != server {
		t.Errorf("live path output differs from server path:\nlive:   %s\nserver: %s",
			buf.String(), server)
	}
}

func TestSubtreeIdempotent(t *testing.T) {
	a := newApplier(t, []string{"body"}, nil)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		t.Fatalf("goquery parse error: %v", err)
	}
	if _, err := a.Subtree(doc); err != nil {
		t.Fatalf("Subtree() error: %v", err)
	}
	n, err := a.Subtree(doc)
	if err != nil {
		t.Fatalf("second Subtree() error: %v", err)
	}
	if n != 0 {
		t.Errorf("second Subtree() rewrote %d text nodes, want 0", n)
	}
}

func TestClassName(t *testing.T) {
	tests := []struct {
		family segment.Family
		want   string
	}{
		{segment.Trademark, "typograf-trademark"},
		{segment.Chemical, "typograf-chemical"},
		{segment.MathSuper, "typograf-math-sup"},
		{segment.MathSub, "typograf-math-sub"},
	}
	for _, tt := range tests {
		if got := apply.ClassName(tt.family); got != tt.want {
			t.Errorf("ClassName(%v) = %q, want %q", tt.family, got, tt.want)
		}
	}
}
