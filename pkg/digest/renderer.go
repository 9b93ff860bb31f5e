package digest

import (
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/digest.html.tmpl
var templatesFS embed.FS

// Renderer produces the final HTML digest document
type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy

	nowFn func() time.Time // replaced in tests
}

// NewRenderer loads the embedded digest template
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/digest.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}
	return &Renderer{tmpl: tmpl, policy: bluemonday.StrictPolicy(), nowFn: time.Now}, nil
}

type renderedArticle struct {
	Date  string
	Title string
	Link  string
}

type renderedFeed struct {
	Title    string
	Articles []renderedArticle
}

type digestData struct {
	Date    string
	AgeDays int
	Total   int
	Feeds   []renderedFeed
	Failed  []string
}

// Render produces the digest HTML for the given aggregation result. Pure
// except for the "generated on" date in the header.
func (r *Renderer) Render(result *Result, maxAgeDays int) (string, error) {
	data := digestData{
		Date:    r.nowFn().Format("Monday, January 2, 2006"),
		AgeDays: maxAgeDays,
		Total:   result.Total,
		Failed:  result.Failed,
	}

	for _, feedArticles := range result.Feeds {
		rendered := renderedFeed{Title: r.clean(feedArticles.Title)}
		for _, article := range feedArticles.Articles {
			rendered.Articles = append(rendered.Articles, renderedArticle{
				Date:  article.Published.Format("Jan 02"),
				Title: r.clean(article.Title),
				Link:  article.Link,
			})
		}
		data.Feeds = append(data.Feeds, rendered)
	}

	var buf strings.Builder
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute digest template: %w", err)
	}
	return buf.String(), nil
}

// clean strips any markup a feed may have smuggled into a title; template
// escaping handles the rest on output
func (r *Renderer) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(s)))
}
