package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Annotation attributes stamped onto the DOM by the live session before a
// snapshot is captured. Static documents can carry them directly, which keeps
// the whole extraction core runnable against plain HTML.
const (
	attrNaturalWidth  = "data-ecotag-nw"
	attrNaturalHeight = "data-ecotag-nh"
	attrHidden        = "data-ecotag-hidden"
)

// Snapshot is a parsed view of one page at one instant. It is the only input
// the extractors see; a fresh snapshot is captured for every pass.
type Snapshot struct {
	URL string
	Doc *goquery.Document
}

// NewSnapshot parses raw page HTML into a Snapshot.
func NewSnapshot(html, pageURL string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %v", err)
	}
	return &Snapshot{URL: pageURL, Doc: doc}, nil
}

// Site returns the page's origin identifier (hostname).
func (s *Snapshot) Site() string {
	return hostnameOf(s.URL)
}

// Meta looks up a page metadata entry by meta[name], then meta[property].
func (s *Snapshot) Meta(name string) string {
	if v, ok := s.Doc.Find(`meta[name="` + name + `"]`).First().Attr("content"); ok && v != "" {
		return v
	}
	if v, ok := s.Doc.Find(`meta[property="` + name + `"]`).First().Attr("content"); ok && v != "" {
		return v
	}
	return ""
}

// BodyText returns the text content of the page body.
func (s *Snapshot) BodyText() string {
	return s.Doc.Find("body").Text()
}

func hostnameOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
