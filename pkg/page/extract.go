package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxSectionItems = 10
	maxImages       = 15
	noTitle         = "No title found"
)

const (
	productSelector = `.product, [class*=product], [id*=product], .item, [data-component*=product]`
	videoSelector   = `video, [class*=video], [id*=video], iframe[src*=youtube], iframe[src*=vimeo]`
	articleSelector = `article, .card, [class*=card], .post, [class*=post], .item, [class*=item]`
	musicSelector   = `audio, [class*=track], [class*=song], [class*=music], [class*=playlist]`
	imageSelector   = `img[alt]:not([width="16"]):not([width="24"]):not([width="32"]):not([height="16"]):not([height="24"]):not([height="32"])`
	linkSelector    = `a[href]:not([href^="#"]):not([href=""]) h1, a[href]:not([href^="#"]):not([href=""]) h2, a[href]:not([href^="#"]):not([href=""]) h3, a.main-link, a.primary-link`
	headingSelector = `h1, h2, h3, h4, .title, [class*=title]`
)

// Extract pulls the page title and up to ten items per section (fifteen
// images) out of rawHTML. It never fails: unparsable markup yields an Info
// carrying only the title placeholder and url.
func Extract(rawHTML, url string) *Info {
	info := &Info{Title: noTitle, URL: url}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return info
	}

	if title := clean(doc.Find("title").First().Text()); title != "" {
		info.Title = title
	}

	first(doc.Find(productSelector), maxSectionItems).Each(func(_ int, s *goquery.Selection) {
		if it := newItem(
			"name", textOf(s, `.product-title, .name, h2, h3, [class*=title]`),
			"price", textOf(s, `.price, [class*=price]`),
			"seller", textOf(s, `.seller, .vendor, [class*=seller], [class*=vendor]`),
			"rating", textOf(s, `.rating, [class*=rating], .stars`),
			"description", textOf(s, `.description, [class*=description]`),
		); it != nil {
			info.Products = append(info.Products, it)
		}
	})

	first(doc.Find(videoSelector), maxSectionItems).Each(func(_ int, s *goquery.Selection) {
		title := firstNonEmpty(attr(s, "title"), attr(s, "alt"), attr(s, "aria-label"), precedingText(s, headingSelector))
		src := attr(s, "src")
		if src == "" {
			src = attr(s.Find("source").First(), "src")
		}
		if it := newItem(
			"title", title,
			"creator", precedingText(s, `[class*=creator], [class*=author], [class*=channel]`),
			"duration", firstNonEmpty(attr(s, "duration"), textOf(s, `[class*=duration], [class*=length], [class*=time]`)),
			"src", src,
		); it != nil {
			info.Videos = append(info.Videos, it)
		}
	})

	first(doc.Find(articleSelector), maxSectionItems).Each(func(_ int, s *goquery.Selection) {
		if it := newItem(
			"title", textOf(s, `h1, h2, h3, h4, .title, [class*=title], [class*=heading]`),
			"author", textOf(s, `.author, [class*=author], [class*=byline]`),
			"date", textOf(s, `.date, [class*=date], [class*=time], time`),
			"summary", textOf(s, `p, .summary, [class*=summary], [class*=excerpt]`),
		); it != nil {
			info.Articles = append(info.Articles, it)
		}
	})

	first(doc.Find(musicSelector), maxSectionItems).Each(func(_ int, s *goquery.Selection) {
		if it := newItem(
			"title", firstNonEmpty(textOf(s, `[class*=title], .name, [class*=name]`), attr(s, "title"), attr(s, "aria-label")),
			"artist", textOf(s, `[class*=artist], .artist, [class*=singer], .singer`),
			"album", textOf(s, `[class*=album]`),
			"duration", textOf(s, `[class*=duration], [class*=length], [class*=time]`),
		); it != nil {
			info.Music = append(info.Music, it)
		}
	})

	first(doc.Find(imageSelector), maxImages).Each(func(_ int, s *goquery.Selection) {
		alt := attr(s, "alt")
		if alt == "" {
			return
		}
		info.Images = append(info.Images, newItem("alt", alt, "src", attr(s, "src")))
	})

	first(doc.Find(linkSelector), maxSectionItems).Each(func(_ int, s *goquery.Selection) {
		text := clean(s.Text())
		if text == "" {
			return
		}
		href := attr(s, "href")
		if href == "" {
			href = attr(s.Closest("a[href]"), "href")
		}
		info.Links = append(info.Links, newItem("text", text, "href", href))
	})

	return info
}

// first narrows s to at most n elements.
func first(s *goquery.Selection, n int) *goquery.Selection {
	if s.Length() <= n {
		return s
	}
	return s.Slice(0, n)
}

func clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func textOf(s *goquery.Selection, selector string) string {
	return clean(s.Find(selector).First().Text())
}

// precedingText returns the text of the nearest element matching selector
// that comes before s: earlier siblings (or their descendants) first, then
// the same search from each ancestor.
func precedingText(s *goquery.Selection, selector string) string {
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		found := ""
		cur.PrevAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			if sib.Is(selector) {
				found = clean(sib.Text())
			} else if nested := sib.Find(selector).Last(); nested.Length() > 0 {
				found = clean(nested.Text())
			}
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
