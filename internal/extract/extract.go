// Package extract provides the optional pre- and post-passes around
// the transformation: isolating the readable main content of a page
// before transforming it, and rendering transformed markup as Markdown
// for preview output.
package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/go-shiori/go-readability"
)

// Readable extracts the main article content from an HTML document and
// returns it as an HTML fragment suitable for transformation. baseURL
// provides link-resolution context and may be nil.
func Readable(content io.Reader, baseURL *url.URL) (string, error) {
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	article, err := readability.FromReader(content, baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract main content: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return "", fmt.Errorf("no readable content found")
	}
	return article.Content, nil
}

// MarkdownPreview converts transformed HTML into Markdown for human
// inspection of what the transformation changed. Inline sup/sub/span
// content is kept in place as plain text.
func MarkdownPreview(markup string) (string, error) {
	converter := md.NewConverter("", true, nil)

	out, err := converter.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown preview: %w", err)
	}

	cleaned := strings.TrimSpace(out)
	cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	return cleaned, nil
}
