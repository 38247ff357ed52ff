package seo

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/envis/envis/internal/model"
)

// PageMeta is the set of head values injected for one page.
type PageMeta struct {
	Title       string
	Description string
	URL         string
	Type        string
}

// PostMeta builds the head values for a published blog post.
func PostMeta(siteName, baseURL string, post *model.BlogPost) PageMeta {
	return PageMeta{
		Title:       fmt.Sprintf("%s | %s Blog", post.Title, siteName),
		Description: post.Excerpt,
		URL:         PostURL(baseURL, post.Slug),
		Type:        "article",
	}
}

type headTag struct {
	pattern *regexp.Regexp
	render  func(value string) string
	value   func(m PageMeta) string
}

func metaName(name string) headTag {
	return headTag{
		pattern: regexp.MustCompile(`(?is)<meta\s+[^>]*name=["']` + regexp.QuoteMeta(name) + `["'][^>]*>`),
		render: func(v string) string {
			return fmt.Sprintf(`<meta name="%s" content="%s" />`, name, v)
		},
	}
}

func metaProperty(property string) headTag {
	return headTag{
		pattern: regexp.MustCompile(`(?is)<meta\s+[^>]*property=["']` + regexp.QuoteMeta(property) + `["'][^>]*>`),
		render: func(v string) string {
			return fmt.Sprintf(`<meta property="%s" content="%s" />`, property, v)
		},
	}
}

func with(t headTag, value func(m PageMeta) string) headTag {
	t.value = value
	return t
}

var (
	headClose = regexp.MustCompile(`(?i)</head>`)

	headTags = []headTag{
		{
			pattern: regexp.MustCompile(`(?is)<title>.*?</title>`),
			render:  func(v string) string { return "<title>" + v + "</title>" },
			value:   func(m PageMeta) string { return m.Title },
		},
		with(metaName("description"), func(m PageMeta) string { return m.Description }),
		{
			pattern: regexp.MustCompile(`(?is)<link\s+[^>]*rel=["']canonical["'][^>]*>`),
			render:  func(v string) string { return `<link rel="canonical" href="` + v + `" />` },
			value:   func(m PageMeta) string { return m.URL },
		},
		with(metaProperty("og:title"), func(m PageMeta) string { return m.Title }),
		with(metaProperty("og:description"), func(m PageMeta) string { return m.Description }),
		with(metaProperty("og:url"), func(m PageMeta) string { return m.URL }),
		with(metaProperty("og:type"), func(m PageMeta) string { return m.Type }),
		with(metaName("twitter:card"), func(PageMeta) string { return "summary_large_image" }),
		with(metaName("twitter:title"), func(m PageMeta) string { return m.Title }),
		with(metaName("twitter:description"), func(m PageMeta) string { return m.Description }),
	}
)

// InjectMeta rewrites the head tags of an HTML document. Existing tags are
// replaced in place; missing ones are appended before </head>. Values are
// HTML-escaped. A document without </head> only gets in-place replacements.
func InjectMeta(doc string, m PageMeta) string {
	var missing []string
	for _, t := range headTags {
		tag := t.render(html.EscapeString(t.value(m)))
		if loc := t.pattern.FindStringIndex(doc); loc != nil {
			doc = doc[:loc[0]] + tag + doc[loc[1]:]
			continue
		}
		missing = append(missing, tag)
	}
	if len(missing) == 0 {
		return doc
	}

	loc := headClose.FindStringIndex(doc)
	if loc == nil {
		return doc
	}
	var b strings.Builder
	b.WriteString(doc[:loc[0]])
	for _, tag := range missing {
		b.WriteString("    ")
		b.WriteString(tag)
		b.WriteString("\n")
	}
	b.WriteString(doc[loc[0]:])
	return b.String()
}
