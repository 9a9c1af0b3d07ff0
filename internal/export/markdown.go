package export

import (
	"bufio"
	"io"
	"regexp"
)

var listMarker = regexp.MustCompile(`^(- |\d+\. )`)

// Markdown writes d as Markdown. Blocks are separated by blank lines except
// for consecutive items, which form one list.
func Markdown(w io.Writer, d Document) error {
	bw := bufio.NewWriter(w)
	first := true
	prev := Gap
	for _, b := range d.Blocks {
		if b.Kind == Gap {
			continue
		}
		if !first && !(prev == Item && b.Kind == Item) {
			bw.WriteString("\n")
		}
		first = false

		switch b.Kind {
		case Title:
			bw.WriteString("# " + b.Text + "\n")
		case Heading:
			bw.WriteString("## " + b.Text + "\n")
		case Label:
			bw.WriteString("**" + b.Text + "**\n")
		case Text:
			bw.WriteString(b.Text + "\n")
		case Item:
			if !listMarker.MatchString(b.Text) {
				bw.WriteString("- ")
			}
			bw.WriteString(b.Text + "\n")
		}
		prev = b.Kind
	}
	return bw.Flush()
}
