package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	html := `<h2>Wedding</h2><p>Full <b>line array</b> setup.</p><script>alert(1)</script><ul><li>Lights</li><li>Fog</li></ul>`
	assert.Equal(t, "Wedding Full line array setup. Lights Fog", PlainText(html))
}

func TestExcerpt(t *testing.T) {
	t.Run("short text is returned whole", func(t *testing.T) {
		assert.Equal(t, "Short post.", Excerpt("<p>Short post.</p>", 160))
	})

	t.Run("long text is cut on a word boundary", func(t *testing.T) {
		html := "<p>" + strings.Repeat("sound check ", 30) + "</p>"
		got := Excerpt(html, 40)
		assert.True(t, strings.HasSuffix(got, "..."))
		assert.LessOrEqual(t, len([]rune(strings.TrimSuffix(got, "..."))), 40)
		assert.False(t, strings.Contains(got, "chec..."))
	})

	t.Run("cut already on a word boundary keeps the last word", func(t *testing.T) {
		assert.Equal(t, "line array...", Excerpt("<p>line array system</p>", 10))
		assert.Equal(t, "line...", Excerpt("<p>line array system</p>", 9))
	})

	t.Run("multibyte runes are not split", func(t *testing.T) {
		got := Excerpt("<p>"+strings.Repeat("ñ", 50)+"</p>", 10)
		assert.Equal(t, strings.Repeat("ñ", 10)+"...", got)
	})
}

func TestFirstImage(t *testing.T) {
	html := `<p>intro</p><img alt="x"><img src=" https://cdn.example.com/a.jpg "><img src="b.jpg">`
	assert.Equal(t, "https://cdn.example.com/a.jpg", FirstImage(html))
	assert.Equal(t, "", FirstImage("<p>no images</p>"))
}
