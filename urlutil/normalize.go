// Package urlutil turns the raw references found on a page into absolute
// URLs and decides which of them fall inside the crawl's domain policy.
package urlutil

import "strings"

// Normalize makes ref absolute using the scheme and host of the page it was
// found on.
//
//   - "//host/path" takes https when the page was served over https, http otherwise
//   - "/path" is joined onto pageScheme://pageHost
//   - anything else is returned unchanged
//
// Path-relative references such as "foo/bar.html" are not resolved against
// the page path; they pass through as written.
func Normalize(ref, pageScheme, pageHost string) string {
	if rest, ok := strings.CutPrefix(ref, "//"); ok {
		if pageScheme == "https" {
			return "https://" + rest
		}
		return "http://" + rest
	}

	if strings.HasPrefix(ref, "/") {
		return pageScheme + "://" + pageHost + ref
	}

	return ref
}
