package util

import (
	"strings"

	"golang.org/x/net/html"
)

// TextContent extracts the text of an HTML fragment, with runs of
// whitespace collapsed to single spaces.
func TextContent(input string) string {

	tokenizer := html.NewTokenizerFragment(strings.NewReader(input), "body")

	var buf = &strings.Builder{}

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break // assuming tokenizer.Err() == io.EOF
		}
		if tt == html.TextToken {
			buf.Write(tokenizer.Text())
			buf.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(buf.String()), " ")
}
