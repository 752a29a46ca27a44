// Package render turns the enriched record set into the final
// self-contained HTML page. The page carries the records as embedded JSON
// and does all filtering, sorting and sparkline drawing client-side, so
// the artifact needs no server and no further API access.
package render

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/owasp-bumper/repolist/internal/domain"
)

//go:embed page.html.tmpl
var pageTemplate string

type pageData struct {
	Org         string
	GeneratedAt string
	ReposJSON   template.JS
}

// Page writes the repository browser page for org to w. The records are
// serialized verbatim: the JSON in the page is the sole contract between
// the pipeline and the page's scripts, null sentinels included.
func Page(w io.Writer, org string, repos []domain.EnrichedRepository, generatedAt time.Time) error {
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse page template: %w", err)
	}

	encoded, err := json.Marshal(repos)
	if err != nil {
		return fmt.Errorf("failed to encode repositories: %w", err)
	}
	// </script> inside a description would end the data block early.
	safe := strings.ReplaceAll(string(encoded), "</", `<\/`)

	data := pageData{
		Org:         strings.ToUpper(org),
		GeneratedAt: generatedAt.UTC().Format("2006-01-02 15:04 MST"),
		ReposJSON:   template.JS(safe),
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// Records serializes the enriched record set as indented JSON, the shape
// consumed by the page and by anything downstream that wants the raw data.
func Records(repos []domain.EnrichedRepository) ([]byte, error) {
	out, err := json.MarshalIndent(repos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	return out, nil
}
