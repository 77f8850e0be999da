package source

import (
	"errors"
	"image"

	"github.com/gen2brain/go-fitz"
)

var ErrUnsupported = errors.New("unsupported media source")

// Source is a paged still-frame backend. Decoders map media time onto a
// page index and ask the source to rasterise it.
type Source interface {
	PageCount() int
	RenderPage(index int) (image.Image, error)
	Close() error
}

type FitzPDFSource struct {
	doc *fitz.Document
	dpi int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &FitzPDFSource{doc: doc, dpi: dpi}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

// RenderPage is not safe for concurrent use; every decoder opens its own
// document.
func (f *FitzPDFSource) RenderPage(index int) (image.Image, error) {
	return f.doc.ImageDPI(index, float64(f.dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
