package youtube

import (
	"fmt"
	"strings"
)

const resultsPage = `<html><body><div id="contents">
<ytd-item-section-renderer>
  <ytd-video-renderer>
    <a id="video-title" href="/watch?v=abc123">  Lofi beats
      to study to </a>
    <div id="channel-name">Chill Channel</div>
    <div class="metadata-stats"><span class="style-scope">1.2M views</span></div>
    <span class="ytd-thumbnail-overlay-time-status-renderer">1:02:03</span>
    <div id="description-text">Relaxing music.</div>
  </ytd-video-renderer>
  <ytd-video-renderer>
    <a id="video-title">Jazz piano</a>
    <div id="channel-name">Piano Bar</div>
  </ytd-video-renderer>
  <ytd-video-renderer>
    <a id="video-title" href="https://youtu.be/xyz">Rain sounds</a>
  </ytd-video-renderer>
</ytd-item-section-renderer>
</div></body></html>`

func manyResults(n int) string {
	var b strings.Builder
	b.WriteString("<html><body><div id=\"contents\">")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<ytd-video-renderer><a id="video-title" href="/watch?v=%d">Video title %d</a></ytd-video-renderer>`, i, i)
	}
	b.WriteString("</div></body></html>")
	return b.String()
}
