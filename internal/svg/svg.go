// Package svg rasterizes SVG documents with oksvg and rasterx.
package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	stdimage "image"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/gogpu/respack/internal/image"
)

// ErrNoSize is returned for documents without a usable width and height.
var ErrNoSize = errors.New("svg: document has no size")

// Document is a parsed SVG file.
type Document struct {
	icon          *oksvg.SvgIcon
	width, height float64
}

// Load parses the SVG file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("svg: read: %w", err)
	}
	return Parse(data)
}

// Parse parses an SVG document. The size comes from the width and height
// attributes of the root element, falling back to its viewBox.
func Parse(data []byte) (*Document, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("svg: parse: %w", err)
	}
	d := &Document{icon: icon, width: icon.ViewBox.W, height: icon.ViewBox.H}
	if w, h, ok := rootSize(bytes.NewReader(data)); ok {
		d.width, d.height = w, h
	}
	return d, nil
}

// Size returns the document size in pixels.
func (d *Document) Size() (width, height float64) { return d.width, d.height }

// PixelSize returns the document size rounded to whole pixels.
func (d *Document) PixelSize() (width, height int) {
	return int(math.Round(d.width)), int(math.Round(d.height))
}

// Rasterize renders the document stretched to width x height.
func (d *Document) Rasterize(width, height int) (*image.ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrNoSize, width, height)
	}
	rgba := stdimage.NewRGBA(stdimage.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)

	d.icon.SetTarget(0, 0, float64(width), float64(height))
	d.icon.Draw(dasher, 1)

	return image.FromStdImage(rgba), nil
}

// rootSize reads the width and height attributes of the first element.
// Only unitless and px lengths are understood.
func rootSize(r io.Reader) (float64, float64, bool) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err != nil {
			return 0, 0, false
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		var w, h float64
		var okW, okH bool
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "width":
				w, okW = parseLength(a.Value)
			case "height":
				h, okH = parseLength(a.Value)
			}
		}
		return w, h, okW && okH && w > 0 && h > 0
	}
}

func parseLength(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}
