package page

import (
	"fmt"
	"strings"
)

// fieldPhrase renders one item field inside a spoken sentence.
type fieldPhrase struct {
	field  string
	format string
}

type sectionStyle struct {
	noun    string // "Product"
	found   string // "products" in "I found N products."
	rest    string // "products" in "And N more products."
	lead    string // joins the numbered noun and the fields in the summary form
	summary []fieldPhrase
	detail  []fieldPhrase
}

var styles = map[Kind]sectionStyle{
	Products: {
		noun: "Product", found: "products", rest: "products", lead: " is ",
		summary: []fieldPhrase{{"name", "%s"}, {"price", "priced at %s"}, {"seller", "sold by %s"}},
		detail:  []fieldPhrase{{"name", "%s"}, {"price", "priced at %s"}, {"seller", "sold by %s"}, {"rating", "rated %s"}},
	},
	Videos: {
		noun: "Video", found: "videos", rest: "videos", lead: " ",
		summary: []fieldPhrase{{"title", "is titled '%s'"}, {"creator", "by %s"}, {"duration", "with duration %s"}},
		detail:  []fieldPhrase{{"title", "'%s'"}, {"creator", "by %s"}, {"duration", "duration %s"}},
	},
	Articles: {
		noun: "Article", found: "articles", rest: "articles", lead: " ",
		summary: []fieldPhrase{{"title", "is titled '%s'"}, {"author", "by %s"}, {"date", "dated %s"}},
		detail:  []fieldPhrase{{"title", "'%s'"}, {"author", "by %s"}, {"date", "dated %s"}},
	},
	Music: {
		noun: "Track", found: "music tracks", rest: "tracks", lead: " ",
		summary: []fieldPhrase{{"title", "is '%s'"}, {"artist", "by %s"}, {"album", "from album %s"}},
		detail:  []fieldPhrase{{"title", "'%s'"}, {"artist", "by %s"}, {"album", "from album %s"}},
	},
}

func phrases(it Item, fields []fieldPhrase) []string {
	var out []string
	for _, f := range fields {
		if v := it.Get(f.field); v != "" {
			out = append(out, fmt.Sprintf(f.format, v))
		}
	}
	return out
}

// DescribeTemplate renders a spoken overview of info without an LLM: up to
// three products, videos, articles and tracks, up to five images and links,
// and a count of what was left out.
func DescribeTemplate(info *Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You're on %s at %s. ", info.Title, info.URL)

	for _, k := range []Kind{Products, Videos, Articles, Music} {
		items := info.Items(k)
		if len(items) == 0 {
			continue
		}
		st := styles[k]
		fmt.Fprintf(&b, "I found %d %s. ", len(items), st.found)
		for i, it := range items[:min(3, len(items))] {
			parts := phrases(it, st.summary)
			if len(parts) == 0 {
				fmt.Fprintf(&b, "%s %d. ", st.noun, i+1)
				continue
			}
			fmt.Fprintf(&b, "%s %d%s%s. ", st.noun, i+1, st.lead, strings.Join(parts, ", "))
		}
		if len(items) > 3 {
			fmt.Fprintf(&b, "And %d more %s. ", len(items)-3, st.rest)
		}
	}

	if len(info.Images) > 0 {
		fmt.Fprintf(&b, "I found %d images with descriptions. ", len(info.Images))
		for i, it := range info.Images[:min(5, len(info.Images))] {
			fmt.Fprintf(&b, "Image %d shows %s. ", i+1, it.Get("alt"))
		}
		if len(info.Images) > 5 {
			fmt.Fprintf(&b, "And %d more images. ", len(info.Images)-5)
		}
	}

	if len(info.Links) > 0 {
		fmt.Fprintf(&b, "I found %d main links including: ", len(info.Links))
		texts := make([]string, 0, 5)
		for _, it := range info.Links[:min(5, len(info.Links))] {
			texts = append(texts, it.Get("text"))
		}
		b.WriteString(strings.Join(texts, ", "))
		if len(info.Links) > 5 {
			fmt.Fprintf(&b, ", and %d more.", len(info.Links)-5)
		}
	}

	if info.Empty() {
		b.WriteString("I didn't identify any specific content like products, videos, or articles on this page.")
	}

	return strings.TrimSpace(b.String())
}

// DescribeKindTemplate renders a spoken overview of one section: up to five
// items (eight images or links) and a count of the rest.
func DescribeKindTemplate(k Kind, info *Info) string {
	items := info.Items(k)
	if len(items) == 0 {
		return fmt.Sprintf("I didn't find any %s on this page.", k)
	}

	shown := 5
	if k == Images || k == Links {
		shown = 8
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s on this page. ", len(items), k)

	switch k {
	case Images:
		for i, it := range items[:min(shown, len(items))] {
			fmt.Fprintf(&b, "Image %d shows %s. ", i+1, it.Get("alt"))
		}
	case Links:
		texts := make([]string, 0, shown)
		for _, it := range items[:min(shown, len(items))] {
			texts = append(texts, "'"+it.Get("text")+"'")
		}
		fmt.Fprintf(&b, "Main links include: %s. ", strings.Join(texts, ", "))
	default:
		st := styles[k]
		for i, it := range items[:min(shown, len(items))] {
			fmt.Fprintf(&b, "%s %d: %s. ", st.noun, i+1, strings.Join(phrases(it, st.detail), ", "))
		}
	}

	if len(items) > shown {
		fmt.Fprintf(&b, "And %d more %s.", len(items)-shown, k)
	}
	return strings.TrimSpace(b.String())
}
