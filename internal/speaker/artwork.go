package speaker

import (
	"strings"
	"time"
)

// expandImageURL turns an artwork reference into a URL a browser can
// fetch. Relative references are resolved against the server's HTTP
// base. A day-granular cache key is appended so consumers re-fetch
// artwork at most once per day even when the reference itself is
// stable.
func expandImageURL(baseURL, ref string, now time.Time) string {
	url := ref
	if strings.HasPrefix(ref, "/") {
		url = baseURL + ref
	}

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "mopt=" + now.Format("20060102")
}
