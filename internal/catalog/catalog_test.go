package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `Sleep Haven product 1: Luxury Cloud-Comfort Memory Foam Mattress
Experience the epitome of luxury with our Luxury Cloud-Comfort Memory Foam Mattress.
Price: $999

Sleep Haven product 2: Classic Harmony Spring Mattress
A perfect blend of traditional craftsmanship and modern comfort.
Price: $1,299
`

const articleHTML = `<!DOCTYPE html>
<html><head><title>Sleep Haven Mattresses</title>
<script>window.tracking = "do-not-index";</script></head>
<body>
<nav><a href="/">Home</a> | <a href="/cart">Cart</a></nav>
<article>
<h1>Our mattresses</h1>
<p>The Luxury Cloud-Comfort Memory Foam Mattress adapts to your body, relieves pressure points, and keeps you cool through the night, all for 999 dollars.</p>
<p>The Classic Harmony Spring Mattress combines individually wrapped coils, a plush pillow top, and reinforced edges, giving a supportive and familiar feel for 1299 dollars.</p>
<p>The EcoGreen Hybrid Latex Mattress is made from organic latex, recycled steel coils, and a cotton cover, so it is both sustainable and comfortable for 1599 dollars.</p>
</article>
</body></html>`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadTextFile(t *testing.T) {
	path := writeFile(t, "catalog.txt", sampleCatalog)

	text, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog, text)
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Load(ctx, "  ", Options{})
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = Load(ctx, filepath.Join(t.TempDir(), "missing.txt"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(ctx, writeFile(t, "empty.txt", "\n\n  \n"), Options{})
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestLoadYAMLCatalog(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
products:
  - name: Classic Harmony Spring Mattress
    description: Traditional springs with a plush pillow top.
    price: "$1,299"
    sizes: [Queen, King]
  - name: EcoGreen Hybrid Latex Mattress
    description: Organic latex and recycled coils.
    price: "$1,599"
    attributes:
      warranty: 10 years
      firmness: medium
`)

	text, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)

	paras := strings.Split(text, "\n\n")
	require.Len(t, paras, 2)
	assert.Equal(t, "Classic Harmony Spring Mattress: Traditional springs with a plush pillow top. Price: $1,299. Sizes: Queen, King.", paras[0])
	assert.Equal(t, "EcoGreen Hybrid Latex Mattress: Organic latex and recycled coils. Price: $1,599. firmness: medium. warranty: 10 years.", paras[1])
}

func TestParseProductsTopLevelList(t *testing.T) {
	products, err := ParseProducts([]byte("- name: A\n  price: \"1\"\n- name: B\n"))
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "B", products[1].Name)
}

func TestLoadURLPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.UserAgent())
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(sampleCatalog))
	}))
	defer srv.Close()

	text, err := Load(context.Background(), srv.URL+"/catalog.txt", Options{})
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog, text)
}

func TestLoadURLHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	text, err := Load(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	assert.Contains(t, text, "EcoGreen Hybrid Latex Mattress")
	assert.NotContains(t, text, "do-not-index")
	assert.NotContains(t, text, "<p>")
}

func TestLoadURLStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL, Options{})
	assert.ErrorContains(t, err, "status code 404")
}

func TestTruncateCatalogKeepsRunesWhole(t *testing.T) {
	long := "a" + strings.Repeat("ü", maxCatalogBytes/2)
	got := truncateCatalog(long)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxCatalogBytes)
	assert.Equal(t, maxCatalogBytes-1, len(got))
}

func TestTruncateCatalogAtParagraph(t *testing.T) {
	para := "Sleep Haven mattress: pocket coils and a cooling gel top. Price: $999."
	var b strings.Builder
	for b.Len() <= maxCatalogBytes {
		b.WriteString(para)
		b.WriteString("\n\n")
	}
	got := truncateCatalog(b.String())
	assert.LessOrEqual(t, len(got), maxCatalogBytes)
	assert.True(t, strings.HasSuffix(got, "Price: $999."))

	short := "Sleep Haven product 1"
	assert.Equal(t, short, truncateCatalog(short))
}

func TestLoadURLPlainTextTruncated(t *testing.T) {
	body := strings.Repeat("é", maxCatalogBytes)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("x" + body))
	}))
	defer srv.Close()

	text, err := Load(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(text))
	assert.LessOrEqual(t, len(text), maxCatalogBytes)
}
