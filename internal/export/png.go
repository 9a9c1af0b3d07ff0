package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Page geometry in millimetres, A4 portrait.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
	marginMM     = 10.0
	topMM        = 15.0
	breakMM      = 270.0
)

// PageOptions controls raster output.
type PageOptions struct {
	// PixelsPerMM sets the resolution. Default: 3.
	PixelsPerMM float64
}

type style struct {
	points   float64
	bold     bool
	lineMM   float64
	indentMM float64
}

var styles = map[Kind]style{
	Title:   {points: 18, bold: true, lineMM: 10},
	Heading: {points: 16, bold: true, lineMM: 8},
	Label:   {points: 12, bold: true, lineMM: 7},
	Text:    {points: 12, lineMM: 7},
	Item:    {points: 12, lineMM: 6, indentMM: 4},
	Gap:     {lineMM: 4},
}

var (
	fontsOnce           sync.Once
	regularTTF, boldTTF *truetype.Font
	fontsErr            error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regularTTF, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		boldTTF, fontsErr = truetype.Parse(gobold.TTF)
	})
	return fontsErr
}

// PNGPages renders d onto A4 pages. A new page starts whenever the next
// line would pass the break line.
func PNGPages(d Document, opts PageOptions) ([]image.Image, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	scale := opts.PixelsPerMM
	if scale <= 0 {
		scale = 3
	}

	faces := map[Kind]font.Face{}
	for kind, st := range styles {
		if st.points == 0 {
			continue
		}
		f := regularTTF
		if st.bold {
			f = boldTTF
		}
		// DPI chosen so that points convert to millimetres at scale.
		faces[kind] = truetype.NewFace(f, &truetype.Options{Size: st.points, DPI: scale * 25.4})
	}

	r := &pager{scale: scale}
	r.newPage()
	for _, b := range d.Blocks {
		st := styles[b.Kind]
		if b.Kind == Gap {
			r.y += st.lineMM
			continue
		}

		r.dc.SetFontFace(faces[b.Kind])
		width := (pageWidthMM - 2*marginMM - st.indentMM) * scale
		for _, line := range r.dc.WordWrap(b.Text, width) {
			if r.y+st.lineMM > breakMM {
				r.newPage()
			}
			x := (marginMM + st.indentMM) * scale
			if b.Kind == Title {
				r.dc.DrawStringAnchored(line, pageWidthMM/2*scale, r.y*scale, 0.5, 0)
			} else {
				r.dc.DrawString(line, x, r.y*scale)
			}
			r.y += st.lineMM
		}
	}
	return r.pages(), nil
}

type pager struct {
	scale float64
	dc    *gg.Context
	done  []image.Image
	y     float64
}

func (p *pager) newPage() {
	if p.dc != nil {
		p.done = append(p.done, p.dc.Image())
	}
	p.dc = gg.NewContext(int(pageWidthMM*p.scale), int(pageHeightMM*p.scale))
	p.dc.SetRGB(1, 1, 1)
	p.dc.Clear()
	p.dc.SetRGB(0, 0, 0)
	p.y = topMM
}

func (p *pager) pages() []image.Image {
	return append(p.done, p.dc.Image())
}

// WritePNG encodes one page.
func WritePNG(w io.Writer, page image.Image) error {
	return png.Encode(w, page)
}
