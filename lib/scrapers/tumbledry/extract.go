package tumbledry

import (
	"context"
	"log/slog"
	"strings"
	"tumbledry-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// NotFound is the value of an identity field whose marker element is
// missing from the page. Deactivated accounts report it for every
// field, which is load-bearing for status derivation downstream.
const NotFound = "Not found"

type Identity struct {
	StoreName    string
	ReportedCode string
	LaunchDate   string
}

// PeriodMetric maps a column label to its cell value for one
// reporting month. The schema mirrors whatever headers the source
// table exposed that run.
type PeriodMetric map[string]string

type Extraction struct {
	Identity Identity
	// header labels in table order, empties dropped
	Headers []string
	Rows    []PeriodMetric
}

// identity markers drift across portal releases, so each field gets a
// prioritized selector chain. every marker carries its label as a
// literal prefix inside the element text.
var (
	storeNameSelectors  = []string{"span.store-name-font", "div.store-info .store-name"}
	storeCodeSelectors  = []string{"span.store-code-font", "div.store-info .store-code"}
	launchDateSelectors = []string{"span.launch-date-font", "div.store-info .launch-date"}
)

// ExtractStorePage pulls the identity fields and the yearly summary
// table out of a rendered store detail page. Markup drift degrades to
// missing fields or empty rows, never to an error; the only error
// condition is a login redirect.
func ExtractStorePage(ctx context.Context, page Page, requestedCode string) (Extraction, error) {
	if isLoginRedirect(page.Title) {
		return Extraction{}, ErrSessionExpired
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Html))
	if err != nil {
		return Extraction{}, err
	}

	out := Extraction{
		Identity: Identity{
			StoreName:    identityField(doc, storeNameSelectors, "Store Name"),
			ReportedCode: identityField(doc, storeCodeSelectors, "Code"),
			LaunchDate:   identityField(doc, launchDateSelectors, "Launch Date"),
		},
	}

	if out.Identity.ReportedCode != NotFound && out.Identity.ReportedCode != requestedCode {
		// saved under the requested code regardless
		slog.WarnContext(
			ctx,
			"page reports a different store code than requested",
			"requested", requestedCode,
			"reported", out.Identity.ReportedCode,
		)
	}

	table := findDataTable(doc)
	if table == nil {
		return out, nil
	}

	out.Headers = resolveHeaders(doc, table)
	if len(out.Headers) == 0 {
		return out, nil
	}

	dropped := 0
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != len(out.Headers) {
			dropped++
			return
		}
		metric := make(PeriodMetric, len(out.Headers))
		cells.Each(func(i int, cell *goquery.Selection) {
			metric[out.Headers[i]] = selectionText(cell)
		})
		out.Rows = append(out.Rows, metric)
	})
	if dropped > 0 {
		slog.DebugContext(
			ctx,
			"dropped rows with mismatched cell count",
			"store_code", requestedCode,
			"dropped", dropped,
			"headers", len(out.Headers),
		)
	}

	return out, nil
}

func isLoginRedirect(title string) bool {
	return strings.Contains(strings.ToLower(title), "login")
}

// selectionText flattens a selection's text content, including nested
// markup (cells wrap values in styling spans), into a cleaned string.
func selectionText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, node := range sel.Nodes {
		b.WriteString(htmlutil.GetText(node))
	}
	return htmlutil.CleanText(b.String())
}

func identityField(doc *goquery.Document, selectors []string, label string) string {
	for _, selector := range selectors {
		node := doc.Find(selector).First()
		if node.Length() == 0 {
			continue
		}
		text := selectionText(node)
		text = strings.TrimPrefix(text, label+":")
		text = strings.TrimPrefix(text, label)
		text = strings.TrimSpace(strings.TrimPrefix(text, ":"))
		if text != "" {
			return text
		}
	}
	return NotFound
}

// findDataTable resolves the yearly summary table: the identified
// table first, otherwise the first generic data table that actually
// has body rows. A page without any qualifying table is a valid
// "no data" page.
func findDataTable(doc *goquery.Document) *goquery.Selection {
	table := doc.Find("table#storeSummaryTable").First()
	if table.Length() > 0 {
		return table
	}

	var found *goquery.Selection
	doc.Find("table.table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		if t.Find("tbody tr").Length() > 0 {
			found = t
			return false
		}
		return true
	})
	return found
}

// resolveHeaders prefers the detached frozen-header region, which the
// portal renders separately from the scrolling table body, and falls
// back to the table's own header cells.
func resolveHeaders(doc *goquery.Document, table *goquery.Selection) []string {
	cells := doc.Find("div.table-frozen-header th")
	if cells.Length() == 0 {
		cells = table.Find("thead th")
	}
	if cells.Length() == 0 {
		cells = table.Find("tr").First().Find("th")
	}

	var headers []string
	cells.Each(func(_ int, cell *goquery.Selection) {
		label := selectionText(cell)
		if label != "" {
			headers = append(headers, label)
		}
	})
	return headers
}
