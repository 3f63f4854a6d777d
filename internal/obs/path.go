package obs

import "strings"

// CanonicalPath collapses resource identifiers out of a request path so
// metric labels stay low-cardinality.
func CanonicalPath(raw string) string {
	path := raw
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}

	segs := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(segs) >= 2 && segs[0] == "api":
		switch segs[1] {
		case "posts", "tags", "users":
			if len(segs) == 3 {
				return "/api/" + segs[1] + "/:id"
			}
			if len(segs) == 4 && segs[1] == "posts" && segs[3] == "comments" {
				return "/api/posts/:id/comments"
			}
		}
	case len(segs) == 5 && segs[0] == "users" && segs[1] == "password" && segs[4] == "reset":
		return "/users/password/:username/:email/reset"
	}
	return path
}
