package paginate

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

// Extraction is regexp-based on purpose: career pages in scope render job
// links and labeled fields server-side, and the patterns below are the
// versioned contract for what counts as a job reference. Changing them
// requires the fixtures in paginator_test.go to pass.

var (
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

	// Anchors whose href looks like a job detail page. Both path styles
	// ("/jobs/<id>" and "/job/<slug>") appear across the employer sites.
	jobLinkRegex = regexp.MustCompile(`(?is)<a[^>]+href="([^"#]*/jobs?/[^"#]+)"[^>]*>(.*?)</a>`)

	// Description containers, in priority order.
	descriptionRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<(?:div|section|article)[^>]*(?:id|class)="[^"]*(?:job[_-]?description|posting[_-]?description)[^"]*"[^>]*>(.*?)</(?:div|section|article)>`),
		regexp.MustCompile(`(?is)<(?:div|section|article)[^>]*(?:id|class)="[^"]*description[^"]*"[^>]*>(.*?)</(?:div|section|article)>`),
	}

	// Labeled metadata rows, matched against the page's plain text.
	fieldLabelRegex = regexp.MustCompile(`(?i)\b(location|city|state|zip(?:\s*code)?|job\s*type|employment\s*type|shift(?:\s*type)?|schedule|specialty|department|experience(?:\s*level)?|salary|pay(?:\s*range)?|expires?(?:\s*on|\s*date)?|closing\s*date)\s*:\s*([^\n]+)`)
)

// JobRef is a lightweight listing-page reference: enough to decide whether
// the detail page is worth fetching, nothing more.
type JobRef struct {
	Title     string
	DetailURL string
}

// extractText converts an HTML or HTML-encoded string to plain text: it
// unescapes entities, strips tags, and collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, " ")
	return strings.Join(strings.Fields(plain), " ")
}

// extractRefs pulls job references out of a listing page, resolving
// relative hrefs against baseURL. References without visible anchor text
// are dropped; order is preserved.
func extractRefs(listingHTML string, baseURL string) []JobRef {
	base, baseErr := url.Parse(baseURL)

	var refs []JobRef
	for _, m := range jobLinkRegex.FindAllStringSubmatch(listingHTML, -1) {
		href := html.UnescapeString(m[1])
		title := extractText(m[2])
		if title == "" {
			continue
		}

		if baseErr == nil {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}

		refs = append(refs, JobRef{Title: title, DetailURL: href})
	}
	return refs
}

// extractDescription returns the plain text of the page's description
// container, falling back to the whole page body text when no container
// matches.
func extractDescription(detailHTML string) string {
	for _, re := range descriptionRegexes {
		if m := re.FindStringSubmatch(detailHTML); m != nil {
			return extractText(m[1])
		}
	}
	return extractText(detailHTML)
}

// extractFields scans the detail page's text for labeled rows
// ("Location: Austin, TX") and returns them keyed by lowercased label with
// spaces squeezed out of the key ("job type" → "jobtype").
func extractFields(detailHTML string) map[string]string {
	// Tags become newlines first so labels and values on separate elements
	// don't run together.
	text := html.UnescapeString(detailHTML)
	text = htmlTagRegex.ReplaceAllString(text, "\n")

	fields := make(map[string]string)
	for _, m := range fieldLabelRegex.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(m[1])
		key = strings.Join(strings.Fields(key), "")
		value := strings.TrimSpace(m[2])
		if value == "" {
			continue
		}
		if _, ok := fields[key]; !ok {
			fields[key] = value
		}
	}
	return fields
}
