package seo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/envis/envis/internal/model"
)

const shell = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <title>Envis</title>
    <meta name="description" content="Family wellbeing" />
    <meta property="og:title" content="Envis" />
    <meta property="og:description" content="Family wellbeing" />
  </head>
  <body><div id="root"></div></body>
</html>`

func TestInjectMeta_ReplacesExistingTags(t *testing.T) {
	post := &model.BlogPost{Title: "Screen time", Slug: "screen-time", Excerpt: "How much is too much?"}
	out := InjectMeta(shell, PostMeta("Envis", "https://envis.co.uk", post))

	assert.Contains(t, out, "<title>Screen time | Envis Blog</title>")
	assert.Contains(t, out, `<meta name="description" content="How much is too much?" />`)
	assert.Contains(t, out, `<meta property="og:title" content="Screen time | Envis Blog" />`)
	assert.NotContains(t, out, "Family wellbeing")
	assert.Equal(t, 1, strings.Count(out, "<title>"))
	assert.Equal(t, 1, strings.Count(out, `property="og:description"`))
}

func TestInjectMeta_AppendsMissingTagsBeforeHeadClose(t *testing.T) {
	post := &model.BlogPost{Title: "Hello", Slug: "hello", Excerpt: "x"}
	out := InjectMeta(shell, PostMeta("Envis", "https://envis.co.uk", post))

	head := out[:strings.Index(out, "</head>")]
	assert.Contains(t, head, `<link rel="canonical" href="https://envis.co.uk/blog/hello" />`)
	assert.Contains(t, head, `<meta property="og:url" content="https://envis.co.uk/blog/hello" />`)
	assert.Contains(t, head, `<meta property="og:type" content="article" />`)
	assert.Contains(t, head, `<meta name="twitter:card" content="summary_large_image" />`)
	assert.Contains(t, head, `<meta name="twitter:title" content="Hello | Envis Blog" />`)
	assert.Contains(t, head, `<meta name="twitter:description" content="x" />`)
}

func TestInjectMeta_EscapesValues(t *testing.T) {
	post := &model.BlogPost{Title: `<script>alert("x")</script>`, Slug: "xss", Excerpt: `Tom & "Jerry"`}
	out := InjectMeta(shell, PostMeta("Envis", "https://envis.co.uk", post))

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; | Envis Blog")
	assert.Contains(t, out, `content="Tom &amp; &#34;Jerry&#34;"`)
}

func TestInjectMeta_NoHead(t *testing.T) {
	doc := "<html><body>hi</body></html>"
	assert.Equal(t, doc, InjectMeta(doc, PageMeta{Title: "t"}))
}
