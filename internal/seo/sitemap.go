// Package seo renders the sitemap and rewrites the HTML shell's head tags
// for individual blog posts so crawlers see per-post previews.
package seo

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/envis/envis/internal/model"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// WriteSitemap writes a sitemap with the home page followed by one entry per
// published post. Unpublished posts are skipped.
func WriteSitemap(w io.Writer, baseURL string, posts []*model.BlogPost) error {
	base := strings.TrimSuffix(baseURL, "/")

	set := urlset{XMLNS: sitemapNS}
	set.URLs = append(set.URLs, sitemapURL{
		Loc:        base + "/",
		ChangeFreq: "weekly",
		Priority:   "1.0",
	})
	for _, p := range posts {
		if p == nil || !p.Published {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        PostURL(base, p.Slug),
			LastMod:    p.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// PostURL returns the public URL of a blog post.
func PostURL(baseURL, slug string) string {
	return strings.TrimSuffix(baseURL, "/") + "/blog/" + slug
}
