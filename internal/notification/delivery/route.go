package delivery

import "strings"

// matchPath matches a document path against a pattern whose {name} segments
// capture values, e.g. "users/{userId}/personalNotifications/{notificationId}".
// Empty segments never match a capture.
func matchPath(pattern, path string) (map[string]string, bool) {
	patternSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(path, "/")
	if len(patternSegs) != len(pathSegs) {
		return nil, false
	}

	params := make(map[string]string)
	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if pathSegs[i] == "" {
				return nil, false
			}
			params[seg[1:len(seg)-1]] = pathSegs[i]
			continue
		}
		if seg != pathSegs[i] {
			return nil, false
		}
	}
	return params, true
}
