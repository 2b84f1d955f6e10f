// Package pageops post-processes rendered attendance sheets: several sheets
// can be merged into one document and a translucent watermark can be stamped
// over every page.
//
// Input documents are imported page by page as templates with the gofpdi
// contrib package, so the page content is carried over unchanged.
package pageops

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
)

// A4 in points, used when a page reports no media box.
const (
	defaultPageW = 595.28
	defaultPageH = 841.89
)

// importer imports pages from any number of documents into one output PDF.
// A single gofpdi importer is shared so template names stay unique. Each
// input is spooled to its own file because gofpdi derives the identity of
// imported objects from the source file name; documents read from unnamed
// streams would overwrite each other's objects.
type importer struct {
	pdf *gofpdf.Fpdf
	imp *gofpdi.Importer
	dir string
	n   int
}

func newImporter() *importer {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	return &importer{pdf: pdf, imp: gofpdi.NewImporter()}
}

// spool writes data to a fresh file in the importer's scratch directory.
func (im *importer) spool(data []byte) (string, error) {
	if im.dir == "" {
		dir, err := os.MkdirTemp("", "rollcall-pageops-")
		if err != nil {
			return "", fmt.Errorf("pageops: creating scratch directory: %w", err)
		}
		im.dir = dir
	}
	im.n++
	path := filepath.Join(im.dir, fmt.Sprintf("input-%03d.pdf", im.n))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("pageops: spooling document: %w", err)
	}
	return path, nil
}

// appendDocument copies every page of data into the output and calls each,
// when non-nil, after a page has been placed.
func (im *importer) appendDocument(data []byte, each func(page int, w, h float64)) (pages int, err error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("pageops: empty document")
	}
	path, err := im.spool(data)
	if err != nil {
		return 0, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pageops: importing document: %v", r)
		}
	}()

	first := im.imp.ImportPage(im.pdf, path, 1, "/MediaBox")
	sizes := im.imp.GetPageSizes()
	pages = len(sizes)
	if pages == 0 {
		pages = 1
	}
	for i := 1; i <= pages; i++ {
		tplID := first
		if i > 1 {
			tplID = im.imp.ImportPage(im.pdf, path, i, "/MediaBox")
		}
		w, h := pageSize(sizes, i)
		im.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
		im.imp.UseImportedTemplate(im.pdf, tplID, 0, 0, w, h)
		if each != nil {
			each(i, w, h)
		}
	}
	return pages, im.pdf.Error()
}

func pageSize(sizes map[int]map[string]map[string]float64, page int) (w, h float64) {
	if dims, ok := sizes[page]; ok {
		if mb, ok := dims["/MediaBox"]; ok {
			w, h = mb["w"], mb["h"]
		}
	}
	if w == 0 || h == 0 {
		return defaultPageW, defaultPageH
	}
	return w, h
}

// PageCount returns the number of pages of a PDF document.
func PageCount(data []byte) (n int, err error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("pageops: empty document")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pageops: reading document: %v", r)
		}
	}()
	pdf := gofpdf.New("P", "pt", "A4", "")
	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(data))
	imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	return len(imp.GetPageSizes()), pdf.Error()
}

func (im *importer) output(w io.Writer) error {
	if im.pdf.Err() {
		return im.pdf.Error()
	}
	return im.pdf.Output(w)
}

// cleanup removes the spooled inputs.
func (im *importer) cleanup() {
	if im.dir != "" {
		_ = os.RemoveAll(im.dir)
		im.dir = ""
	}
}
