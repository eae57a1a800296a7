package apiutil

import (
	"strings"
	"sync/atomic"
)

var fileBaseURL atomic.Pointer[string]

// SetFileBaseURL sets the public prefix used by FileURL, normally app.base_url.
func SetFileBaseURL(base string) {
	base = strings.TrimRight(base, "/")
	fileBaseURL.Store(&base)
}

// FileURL returns the public download URL of an uploaded file.
func FileURL(id string) string {
	base := ""
	if p := fileBaseURL.Load(); p != nil {
		base = *p
	}
	return base + "/files/" + id
}
