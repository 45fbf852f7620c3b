package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func paths(v View) []string {
	out := make([]string, len(v.Links))
	for i, l := range v.Links {
		out[i] = l.Path
	}
	return out
}

func active(v View) string {
	for _, l := range v.Links {
		if l.Active {
			return l.Path
		}
	}
	return ""
}

func TestLinks(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		signedIn   bool
		wantPaths  []string
		wantActive string
		redirect   string
	}{
		{"visitor home", "/", false, []string{"/", "/blog"}, "/", ""},
		{"visitor blog post", "/blog/abc", false, []string{"/", "/blog"}, "/blog", ""},
		{"visitor admin", "/admin/posts", false, []string{"/", "/blog"}, "", LoginPath},
		{"visitor admin root", "/admin", false, []string{"/", "/blog"}, "", LoginPath},
		{"owner admin", "/admin/blog/", true, []string{"/admin/posts", "/admin/blog", "/admin/profile"}, "/admin/blog", ""},
		{"owner on public page", "/", true, []string{"/admin/posts", "/admin/blog", "/admin/profile"}, "", ""},
		{"empty path", "", false, []string{"/", "/blog"}, "/", ""},
		{"lookalike prefix", "/administrator", false, []string{"/", "/blog"}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Links(tt.path, tt.signedIn)
			assert.Equal(t, tt.wantPaths, paths(v))
			assert.Equal(t, tt.wantActive, active(v))
			assert.Equal(t, tt.redirect, v.Redirect)
		})
	}
}
