// Package security decides, per request, whether the caller may proceed.
//
// Rules are declared up front as ant-style path patterns and evaluated in
// order; the first matching rule wins. The policy only reads the session
// attached by session.Manager.Load, so it must run after that middleware.
package security

import (
	"path"
	"strings"
)

// Match reports whether urlPath matches an ant-style pattern.
//
//	?   matches one character within a segment
//	*   matches zero or more characters within a segment
//	**  matches zero or more whole segments
//
// Examples:
//
//	/login/**   matches /login, /login/, /login/oauth2/code/google
//	/css/*.css  matches /css/site.css but not /css/a/b.css
//	/kakao      matches /kakao only
func Match(pattern, urlPath string) bool {
	return matchSegments(splitPath(pattern), splitPath(urlPath))
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, segs []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		// path.Match implements * and ? within one segment; a malformed
		// pattern (unbalanced '[') simply never matches.
		if ok, err := path.Match(pattern[0], segs[0]); err != nil || !ok {
			return false
		}
		pattern, segs = pattern[1:], segs[1:]
	}
	return len(segs) == 0
}
