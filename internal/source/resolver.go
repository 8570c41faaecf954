// Package source locates the latest KML acquisition-plan document for
// each satellite on the Copernicus acquisition-plans page.
//
// The page lists one <h4> heading per platform followed by a <ul> of plan
// links, newest first. The resolver walks the parsed HTML tree to the
// first link after the platform's heading.
package source

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/banshee-data/overpass.report/internal/httputil"
	"github.com/banshee-data/overpass.report/internal/sentinel"
)

// DefaultPlansURL is the Copernicus Sentinel-2 acquisition-plans page.
const DefaultPlansURL = "https://sentinels.copernicus.eu/web/sentinel/copernicus/sentinel-2/acquisition-plans"

// DefaultBaseURL prefixes resolved document filenames.
const DefaultBaseURL = "https://sentinels.copernicus.eu/documents/d/sentinel/"

// documentPath extracts the document filename from a plan link href.
var documentPath = regexp.MustCompile(`documents/d/sentinel/(.+)`)

// ResolutionError reports that a satellite's plan link could not be
// located: the page was unreachable or its structure has changed.
type ResolutionError struct {
	Satellite sentinel.Satellite
	Reason    string
	Err       error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %s plan: %s: %v", e.Satellite, e.Reason, e.Err)
	}
	return fmt.Sprintf("resolve %s plan: %s", e.Satellite, e.Reason)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver fetches and scrapes the acquisition-plans page.
type Resolver struct {
	Client   httputil.HTTPClient
	PlansURL string
	BaseURL  string

	// page caches the fetched page body so resolving all three
	// satellites costs one request. The mutex covers the concurrent
	// pipeline mode, which shares one Resolver across goroutines.
	mu   sync.Mutex
	page []byte
}

// NewResolver returns a Resolver using client, defaulting the page and
// base URLs. A nil client uses http.DefaultClient.
func NewResolver(client httputil.HTTPClient) *Resolver {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	return &Resolver{
		Client:   client,
		PlansURL: DefaultPlansURL,
		BaseURL:  DefaultBaseURL,
	}
}

// Resolve returns the download URL and document filename of sat's latest
// plan document.
func (r *Resolver) Resolve(sat sentinel.Satellite) (url, filename string, err error) {
	body, err := r.fetchPage(sat)
	if err != nil {
		return "", "", err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", "", &ResolutionError{Satellite: sat, Reason: "parse page", Err: err}
	}

	href := firstPlanLink(doc, sat.DisplayName())
	if href == "" {
		return "", "", &ResolutionError{Satellite: sat, Reason: "no plan link found on page"}
	}

	m := documentPath.FindStringSubmatch(href)
	if m == nil {
		return "", "", &ResolutionError{Satellite: sat, Reason: fmt.Sprintf("unexpected link format %q", href)}
	}
	filename = m[1]
	return r.BaseURL + filename, filename, nil
}

func (r *Resolver) fetchPage(sat sentinel.Satellite) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.page != nil {
		return r.page, nil
	}
	resp, err := r.Client.Get(r.PlansURL)
	if err != nil {
		return nil, &ResolutionError{Satellite: sat, Reason: "fetch page", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &ResolutionError{Satellite: sat, Reason: fmt.Sprintf("fetch page: status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ResolutionError{Satellite: sat, Reason: "read page", Err: err}
	}
	r.page = body
	return body, nil
}

// firstPlanLink finds the <h4> whose text equals heading, then returns
// the href of the first <a> inside the next <ul> sibling. The newest plan
// is always the first list entry.
func firstPlanLink(doc *html.Node, heading string) string {
	h4 := findHeading(doc, heading)
	if h4 == nil {
		return ""
	}
	for n := h4.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.Data == "ul" {
			return firstAnchorHref(n)
		}
	}
	return ""
}

func findHeading(n *html.Node, heading string) *html.Node {
	if n.Type == html.ElementNode && n.Data == "h4" && strings.TrimSpace(nodeText(n)) == heading {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findHeading(c, heading); found != nil {
			return found
		}
	}
	return nil
}

func firstAnchorHref(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, a := range n.Attr {
			if a.Key == "href" && a.Val != "" {
				return a.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if href := firstAnchorHref(c); href != "" {
			return href
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
