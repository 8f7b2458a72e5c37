// Package page inspects the structure of the served page: its title, the
// feature blocks and the footer. The markup itself is never modified.
package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"page-server/internal/types"
)

// DateToken is the shell-style placeholder left in the footer. It is literal
// text and is never expanded.
const DateToken = "$(date)"

// FooterText is the exact footer text of the page.
const FooterText = "Generated on: " + DateToken

// ExpectedFeatureTitles lists the feature block titles in document order.
var ExpectedFeatureTitles = []string{
	"Feature 1: Modern Design",
	"Feature 2: Clean Code",
	"Feature 3: Customizable",
}

var (
	ErrUnclosedTag      = errors.New("unclosed tag")
	ErrUnexpectedEndTag = errors.New("unexpected end tag")
	ErrFeatureCount     = errors.New("unexpected feature count")
	ErrFeatureTitle     = errors.New("unexpected feature title")
	ErrFooter           = errors.New("unexpected footer")
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Parse extracts the page structure from markup.
func Parse(markup []byte) (*types.PageInfo, error) {
	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	info := &types.PageInfo{
		Features: []types.Feature{},
		Size:     len(markup),
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				info.Title = textContent(n)
			case atom.H1:
				if info.Heading == "" {
					info.Heading = textContent(n)
				}
			case atom.Footer:
				info.Footer = textContent(n)
				return
			case atom.Div:
				if hasClass(n, "feature") {
					info.Features = append(info.Features, parseFeature(n))
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return info, nil
}

func parseFeature(n *html.Node) types.Feature {
	var f types.Feature
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.H3:
			if f.Title == "" {
				f.Title = textContent(c)
			}
		case atom.P:
			if f.Description == "" {
				f.Description = textContent(c)
			}
		}
	}
	return f
}

// textContent returns the concatenated text below n with runs of whitespace
// collapsed to a single space.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

type openTag struct {
	name string
	line int
}

// CheckWellFormed reports whether every non-void start tag in markup has a
// matching end tag, properly nested.
func CheckWellFormed(markup []byte) error {
	z := html.NewTokenizer(bytes.NewReader(markup))
	var stack []openTag
	line := 1

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return fmt.Errorf("tokenize page: %w", err)
			}
			break
		}
		tokenLine := line
		line += bytes.Count(z.Raw(), []byte("\n"))

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			if voidElements[string(name)] {
				continue
			}
			stack = append(stack, openTag{name: string(name), line: tokenLine})
		case html.EndTagToken:
			name, _ := z.TagName()
			if len(stack) == 0 {
				return fmt.Errorf("%w </%s> at line %d", ErrUnexpectedEndTag, name, tokenLine)
			}
			top := stack[len(stack)-1]
			if top.name != string(name) {
				return fmt.Errorf("%w </%s> at line %d, <%s> opened at line %d is still open",
					ErrUnexpectedEndTag, name, tokenLine, top.name, top.line)
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return fmt.Errorf("%w <%s> opened at line %d", ErrUnclosedTag, top.name, top.line)
	}
	return nil
}

// Verify checks markup is well formed, has exactly the expected feature
// blocks and keeps the footer date token unexpanded. Titles and the footer
// are compared as written, with only surrounding whitespace trimmed.
func Verify(markup []byte) error {
	if err := CheckWellFormed(markup); err != nil {
		return err
	}

	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	var titles []string
	var footers []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.DataAtom == atom.Footer:
				footers = append(footers, n)
				return
			case n.DataAtom == atom.Div && hasClass(n, "feature"):
				titles = append(titles, featureTitle(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(titles) != len(ExpectedFeatureTitles) {
		return fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(titles), len(ExpectedFeatureTitles))
	}
	for i, title := range titles {
		if title != ExpectedFeatureTitles[i] {
			return fmt.Errorf("%w %d: got %q, want %q", ErrFeatureTitle, i+1, title, ExpectedFeatureTitles[i])
		}
	}

	if len(footers) != 1 {
		return fmt.Errorf("%w: got %d footers, want 1", ErrFooter, len(footers))
	}
	footer, ok := footerText(footers[0])
	if !ok || footer != FooterText {
		return fmt.Errorf("%w: got %q, want %q", ErrFooter, footer, FooterText)
	}
	return nil
}

func featureTitle(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.H3 {
			text, _ := ownText(c)
			return strings.TrimSpace(text)
		}
	}
	return ""
}

// footerText returns the text of the single <p> inside footer. ok is false
// when the footer holds anything else besides whitespace.
func footerText(footer *html.Node) (string, bool) {
	var p *html.Node
	for c := footer.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
		case c.Type == html.CommentNode:
		case c.Type == html.ElementNode && c.DataAtom == atom.P && p == nil:
			p = c
		default:
			return strings.TrimSpace(textContent(footer)), false
		}
	}
	if p == nil {
		return "", false
	}
	text, ok := ownText(p)
	return strings.TrimSpace(text), ok
}

// ownText concatenates the text children of n. ok is false when n has
// element children.
func ownText(n *html.Node) (string, bool) {
	var sb strings.Builder
	ok := true
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode:
			ok = false
		}
	}
	return sb.String(), ok
}
