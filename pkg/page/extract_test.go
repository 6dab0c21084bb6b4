package page

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopHTML = `<html><head><title> Gadget Shop </title></head><body>
<div class="product-card">
  <h3 class="product-title">Phone X</h3>
  <span class="price">$499</span>
  <span class="seller-name">Acme</span>
  <span class="rating">4.5</span>
</div>
<div class="product-card">
  <h3 class="product-title">Tablet Y</h3>
  <span class="price">$299</span>
</div>
<div class="product-card"><span class="badge"></span></div>
<h2>Launch trailer</h2>
<video src="/trailer.mp4" duration="2:10"></video>
<article>
  <h2>Review: Phone X</h2>
  <span class="byline">Jane Doe</span>
  <time>2024-05-01</time>
  <p>The best phone of the year.</p>
</article>
<div class="track-row"><span class="track-title">Song A</span><span class="artist">Band B</span></div>
<img src="/hero.jpg" alt="A shiny phone">
<img src="/icon.png" alt="icon" width="16">
<img src="/blank.png" alt="  ">
<a href="/deals"><h2>Today's deals</h2></a>
<a href="#top"><h2>Back to top</h2></a>
</body></html>`

func TestExtract(t *testing.T) {
	info := Extract(shopHTML, "https://shop.example.com")

	assert.Equal(t, "Gadget Shop", info.Title)
	assert.Equal(t, "https://shop.example.com", info.URL)

	require.Len(t, info.Products, 2, "empty product cards are dropped")
	assert.Equal(t, "Phone X", info.Products[0].Get("name"))
	assert.Equal(t, "$499", info.Products[0].Get("price"))
	assert.Equal(t, "Acme", info.Products[0].Get("seller"))
	assert.Equal(t, "4.5", info.Products[0].Get("rating"))
	assert.Equal(t, "Tablet Y", info.Products[1].Get("name"))
	assert.NotContains(t, info.Products[1], "seller")

	require.NotEmpty(t, info.Videos)
	assert.Equal(t, "Launch trailer", info.Videos[0].Get("title"))
	assert.Equal(t, "2:10", info.Videos[0].Get("duration"))
	assert.Equal(t, "/trailer.mp4", info.Videos[0].Get("src"))

	var review Item
	for _, it := range info.Articles {
		if it.Get("title") == "Review: Phone X" {
			review = it
		}
	}
	require.NotNil(t, review, "article cards are collected")
	assert.Equal(t, "Jane Doe", review.Get("author"))
	assert.Equal(t, "2024-05-01", review.Get("date"))
	assert.Equal(t, "The best phone of the year.", review.Get("summary"))

	require.NotEmpty(t, info.Music)
	assert.Equal(t, "Song A", info.Music[0].Get("title"))
	assert.Equal(t, "Band B", info.Music[0].Get("artist"))

	require.Len(t, info.Images, 1, "icons and blank alts are skipped")
	assert.Equal(t, "A shiny phone", info.Images[0].Get("alt"))

	require.Len(t, info.Links, 1, "fragment links are skipped")
	assert.Equal(t, "Today's deals", info.Links[0].Get("text"))
	assert.Equal(t, "/deals", info.Links[0].Get("href"))
}

func TestExtractItemsHaveAField(t *testing.T) {
	info := Extract(shopHTML, "u")
	for _, k := range Kinds {
		for _, it := range info.Items(k) {
			assert.NotEmpty(t, it, "%s item", k)
			for field, v := range it {
				assert.NotEmpty(t, v, "%s.%s", k, field)
			}
		}
	}
}

func TestExtractLimits(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<div class="product"><h3>Item %d</h3></div><img src="/%d.jpg" alt="pic %d">`, i, i, i)
	}
	b.WriteString("</body></html>")

	info := Extract(b.String(), "u")
	assert.Len(t, info.Products, 10)
	assert.Len(t, info.Images, 15)
}

func TestExtractEmptyPage(t *testing.T) {
	info := Extract("", "about:blank")
	assert.Equal(t, noTitle, info.Title)
	assert.True(t, info.Empty())
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind(" Videos ")
	assert.True(t, ok)
	assert.Equal(t, Videos, k)

	_, ok = ParseKind("podcasts")
	assert.False(t, ok)
}

func TestParagraphs(t *testing.T) {
	raw := `<html><head><title>T</title><style>body{}</style></head><body>
<script>var hidden = "this should never be read aloud";</script>
<h1>Short title</h1>
<p>This paragraph has more than three words in it.</p>
<div>Headline one is long enough  Headline two is long enough too</div>
<p>Tiny bit here</p>
</body></html>`

	got := Paragraphs(raw)
	assert.Equal(t, []string{
		"This paragraph has more than three words in it.",
		"Headline one is long enough",
		"Headline two is long enough too",
	}, got)
	assert.NotContains(t, ReadableText(raw), "hidden")
}
