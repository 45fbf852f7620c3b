package post

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khoahotran/devfolio/internal/domain/tag"
)

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (&Post{ImageURL: "https://x"}).Validate(), ErrTitleRequired)
	assert.ErrorIs(t, (&Post{Title: "Shop"}).Validate(), ErrImageRequired)
	assert.NoError(t, (&Post{Title: "Shop", ImageURL: "data:image/png;base64,AAAA"}).Validate())
}

func TestMergeSuggestedTags(t *testing.T) {
	p := Post{Tags: tag.Set{"Firebase", "React"}}
	p.MergeSuggestedTags([]string{"React", "SaaS", " ", "Dashboard"})
	assert.Equal(t, tag.Set{"Firebase", "React", "SaaS", "Dashboard"}, p.Tags)
}
