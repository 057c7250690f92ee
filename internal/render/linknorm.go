package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CleanLinks applies the §4.4.1 link-normalization rules to rendered
// HTML, parameterized by the document's number_string. host is the
// domain suffix short-form cross-document URLs use, e.g.
// "oxide.computer" naming "https://{N}.rfd.oxide.computer" and
// "https://rfd.shared.oxide.computer/rfd/{padded}".
func CleanLinks(html, numberString, host string) string {
	html = strings.ReplaceAll(html, `href="\#`, fmt.Sprintf(`href="/rfd/%s#`, numberString))
	html = strings.ReplaceAll(html, `href="#`, fmt.Sprintf(`href="/rfd/%s#`, numberString))
	html = strings.ReplaceAll(html, `object type="image/svg+xml" data="`, fmt.Sprintf(`object type="image/svg+xml" data="/static/images/%s/`, numberString))
	html = strings.ReplaceAll(html, `object data="`, fmt.Sprintf(`object data="/static/images/%s/`, numberString))
	html = strings.ReplaceAll(html, `img src="`, fmt.Sprintf(`img src="/static/images/%s/`, numberString))

	html = rewriteShortFormCrossLinks(html, host)

	prefixedLinkTarget := fmt.Sprintf("link:https://%s.rfd.%s/", numberString, host)
	html = strings.ReplaceAll(html, "link:", prefixedLinkTarget)
	html = strings.ReplaceAll(html, prefixedLinkTarget+"http", "link:http")

	return html
}

var shortFormCrossLink = regexp.MustCompile(`https://([0-9]{1,4})\.rfd\.([a-zA-Z0-9.-]+)`)

// rewriteShortFormCrossLinks rewrites "https://{N}.rfd.<host>" (N of
// width 1-4) to "https://rfd.shared.<host>/rfd/{N-zero-padded-to-4}".
func rewriteShortFormCrossLinks(html, host string) string {
	return shortFormCrossLink.ReplaceAllStringFunc(html, func(match string) string {
		sub := shortFormCrossLink.FindStringSubmatch(match)
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			return match
		}
		return fmt.Sprintf("https://rfd.shared.%s/rfd/%04d", host, n)
	})
}
