package markdown_test

import (
	"testing"

	"github.com/Amund211/riftrewind/internal/markdown"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		text     string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			text:     "You played **Ahri** a lot",
			contains: []string{"<strong>Ahri</strong>"},
		},
		{
			name:     "paragraphs",
			text:     "A\n\nB",
			contains: []string{"<p>A</p>", "<p>B</p>"},
		},
		{
			name:     "table",
			text:     "| Champion | Games |\n| --- | --- |\n| Ahri | 20 |",
			contains: []string{"<table>", "<th>Champion</th>", "<td>Ahri</td>"},
		},
		{
			name:     "strikethrough",
			text:     "~~tilted~~",
			contains: []string{"<del>tilted</del>"},
		},
		{
			name:     "autolink",
			text:     "see https://example.com",
			contains: []string{`<a href="https://example.com">https://example.com</a>`},
		},
		{
			name:     "raw html is dropped",
			text:     "<script>alert(1)</script>\n\nhi",
			contains: []string{"<p>hi</p>"},
			excludes: []string{"<script>"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			rendered, err := markdown.Render(c.text)
			require.NoError(t, err)
			for _, s := range c.contains {
				require.Contains(t, rendered, s)
			}
			for _, s := range c.excludes {
				require.NotContains(t, rendered, s)
			}
		})
	}
}
