// Package navigation decides which links the header shows and where an unauthenticated visitor
// of an admin page is sent.
package navigation

import "strings"

const (
	LoginPath = "/login"
	adminRoot = "/admin"
)

type Link struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

var (
	publicLinks = []Link{
		{Label: "Portfolio", Path: "/"},
		{Label: "Blog", Path: "/blog"},
	}
	adminLinks = []Link{
		{Label: "Projects", Path: "/admin/posts"},
		{Label: "Blog", Path: "/admin/blog"},
		{Label: "Profile", Path: "/admin/profile"},
	}
)

// View is what the header renders for one request.
type View struct {
	Links []Link `json:"links"`
	// Redirect is set when the path must not be shown to this visitor.
	Redirect string `json:"redirect,omitempty"`
}

func IsAdminPath(path string) bool {
	return path == adminRoot || strings.HasPrefix(path, adminRoot+"/")
}

// Links returns the public set for visitors and the admin set once signed in. The link matching
// path, or the closest section containing it, is marked active.
func Links(path string, signedIn bool) View {
	path = clean(path)
	if IsAdminPath(path) && !signedIn {
		return View{Links: mark(publicLinks, LoginPath), Redirect: LoginPath}
	}
	if signedIn {
		return View{Links: mark(adminLinks, path)}
	}
	return View{Links: mark(publicLinks, path)}
}

func mark(links []Link, path string) []Link {
	out := make([]Link, len(links))
	best := -1
	for i, l := range links {
		out[i] = l
		if l.Path == path || (l.Path != "/" && strings.HasPrefix(path, l.Path+"/")) {
			if best < 0 || len(l.Path) > len(out[best].Path) {
				best = i
			}
		}
	}
	if best >= 0 {
		out[best].Active = true
	}
	return out
}

func clean(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
