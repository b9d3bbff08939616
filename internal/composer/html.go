package composer

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParagraphHTML renders text as one <p> element per line. Blank lines become
// <p><br></p> so the editor keeps the spacing. Text is escaped.
func ParagraphHTML(text string) (string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
		if strings.TrimSpace(line) == "" {
			p.AppendChild(&html.Node{Type: html.ElementNode, Data: "br", DataAtom: atom.Br})
		} else {
			p.AppendChild(&html.Node{Type: html.TextNode, Data: line})
		}
		if err := html.Render(&b, p); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
