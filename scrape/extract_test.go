package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!doctype html>
<html>
<head>
  <title> Microgravity and Bone Loss (2014) </title>
  <meta name="description" content="  Mice flown aboard the ISS lost bone density. ">
  <meta name="author" content="A. Researcher, B. Scientist">
</head>
<body>
  <nav><p>Navigation text that is not part of the article</p></nav>
  <article>
    <p>First   paragraph
       of the study.</p>
    <script>var ignored = true;</script>
    <p>Second paragraph about <b>Mars</b>.</p>
  </article>
  <a href="/docs/supplement.txt">notes</a>
  <a href="/pmc/articles/PMC1/pdf/main.PDF">Download PDF</a>
</body>
</html>`

func TestExtract_Article(t *testing.T) {
	meta, err := Extract(articlePage, "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC1/")
	require.NoError(t, err)

	assert.Equal(t, "Microgravity and Bone Loss (2014)", meta.Title)
	assert.Equal(t, "Mice flown aboard the ISS lost bone density.", meta.Abstract)
	assert.Equal(t, "A. Researcher, B. Scientist", meta.Authors)
	assert.Equal(t, 2014, meta.Year)
	assert.Equal(t, "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC1/pdf/main.PDF", meta.PDFURL)
	assert.Equal(t, "First paragraph of the study. Second paragraph about Mars .", meta.Text)
	assert.Equal(t, "3", meta.Extra["paragraph_count"])
	assert.Equal(t, meta.PDFURL, meta.Extra["pdf_url_found"])
	assert.Equal(t, meta.Text, meta.Body())
}

func TestExtract_FallbackSources(t *testing.T) {
	page := `<html><head>
	<meta property="og:description" content="Open graph summary">
	</head><body>
	<span itemprop="author">Dr. Orbit</span>
	<main><p>Main body.</p></main>
	</body></html>`

	meta, err := Extract(page, "https://example.org/paper")
	require.NoError(t, err)
	assert.Equal(t, "Open graph summary", meta.Abstract)
	assert.Equal(t, "Dr. Orbit", meta.Authors)
	assert.Equal(t, "Main body.", meta.Text)
	assert.Zero(t, meta.Year)
	assert.Empty(t, meta.PDFURL)
}

func TestExtract_LongestParagraphs(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 1; i <= 12; i++ {
		b.WriteString("<p>" + strings.Repeat("x", i) + "</p>")
	}
	b.WriteString("</body></html>")

	meta, err := Extract(b.String(), "https://example.org/")
	require.NoError(t, err)

	words := strings.Fields(meta.Text)
	require.Len(t, words, maxFallbackParagraphs)
	assert.Len(t, words[0], 12, "longest paragraph first")
	assert.Len(t, words[9], 3)
}

func TestExtract_AbstractWhenNoText(t *testing.T) {
	meta, err := Extract(`<html><head><meta name="description" content="Only an abstract"></head></html>`, "https://example.org/")
	require.NoError(t, err)
	assert.Empty(t, meta.Text)
	assert.Equal(t, "Only an abstract", meta.Body())
}

func TestExtract_Empty(t *testing.T) {
	_, err := Extract("  ", "https://example.org/")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}
