package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText strips non-printable runes, trims surrounding whitespace
// and collapses inner whitespace runs into single spaces. scraped cell
// text routinely carries template indentation, so every extracted value
// goes through this.
func CleanText(s string) string {
	printable := strings.Builder{}
	for _, c := range s {
		if unicode.IsSpace(c) {
			printable.WriteRune(' ')
		} else if unicode.IsPrint(c) {
			printable.WriteRune(c)
		}
	}
	out := strings.Trim(printable.String(), " ")
	return innerWhitespace.ReplaceAllString(out, " ")
}
