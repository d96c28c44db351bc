package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		`<td>  <b>₹1,20,000</b> <span class="muted">(approx)</span> </td>`,
	))
	require.NoError(t, err)

	// nested element text concatenates in document order
	require.Equal(t, "₹1,20,000 (approx)", CleanText(GetText(doc)))
}

func TestCleanText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  hello   world  ", "hello world"},
		{"line\n\tbreaks\ncollapse", "line breaks collapse"},
		{"zero\x00width\x07cruft", "zerowidthcruft"},
		{"", ""},
	}
	for _, c := range cases {
		require.Equal(t, c.want, CleanText(c.in), "input %q", c.in)
	}
}
