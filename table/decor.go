package table

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/barcode"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	_ "golang.org/x/image/bmp"  // register BMP decoder for logos
	_ "golang.org/x/image/tiff" // register TIFF decoder for logos
	_ "golang.org/x/image/webp" // register WebP decoder for logos

	"github.com/lvillar/rollcall"
)

const (
	logoName     = "rollcall-logo"
	logoHeightPt = 48.0
	footerFontPt = 8.0
)

// decorations draws everything outside the grid: the letterhead behind each
// page, the logo in the title block and the footer.
type decorations struct {
	surface
	cfg rollcall.Config

	// current section
	rc         rollcall.ReportContext
	pageOffset int    // pages before the section
	pagesAlias string // stands for the section's page total

	importer   *gofpdi.Importer
	letterhead int // template id, 0 when absent

	codeKey string // registered verification barcode
	codeW   float64
	codeH   float64

	logo *logoImage
}

type logoImage struct {
	ratio float64 // width over height
}

// installDecorations registers letterhead and logo on the document and
// installs the page header and footer functions. Problems that only drop a
// decoration are returned as warnings; a letterhead or logo that cannot be
// decoded is an error.
func installDecorations(s surface, cfg rollcall.Config) (*decorations, []error, error) {
	d := &decorations{surface: s, cfg: cfg, pagesAlias: "{nb}"}
	var warnings []error

	if len(cfg.Letterhead) > 0 {
		if err := d.importLetterhead(cfg.Letterhead); err != nil {
			return nil, nil, rollcall.NewRenderError("letterhead", err)
		}
	}
	if cfg.Logo != nil && len(cfg.Logo.Data) > 0 {
		if err := d.registerLogo(*cfg.Logo); err != nil {
			return nil, nil, rollcall.NewRenderError("logo", err)
		}
	}
	s.pdf.SetHeaderFuncMode(d.header, true)
	s.pdf.SetFooterFunc(d.footer)
	return d, warnings, nil
}

// begin switches the footer to a section whose first page is firstPage and
// registers the section's verification code. It must be called once the
// section's first page has been added, so the previous page keeps its own
// footer. The returned error is a warning.
func (d *decorations) begin(rc rollcall.ReportContext, firstPage int, pagesAlias string) error {
	d.rc = rc
	d.pageOffset = firstPage - 1
	d.pagesAlias = pagesAlias
	d.codeKey = ""
	return d.registerVerification()
}

// importLetterhead imports the first page of pdf as a template. The gofpdi
// parser panics on malformed input, which is turned into an error here.
func (d *decorations) importLetterhead(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid letterhead PDF: %v", r)
		}
	}()
	d.importer = gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(data))
	d.letterhead = d.importer.ImportPageFromStream(d.pdf, &rs, 1, "/MediaBox")
	if !d.pdf.Ok() {
		return d.pdf.Error()
	}
	return nil
}

func (d *decorations) header() {
	if d.importer == nil {
		return
	}
	w, h := d.pdf.GetPageSize()
	d.importer.UseImportedTemplate(d.pdf, d.letterhead, 0, 0, w, h)
}

// footer prints the document ID, the page counter and the verification code
// inside the band reserved above the bottom margin.
func (d *decorations) footer() {
	band := d.cfg.FooterHeight
	if band <= 0 {
		return
	}
	pageW, pageH := d.pdf.GetPageSize()
	m := d.cfg.Margins
	top := pageH - m.Bottom - band
	width := pageW - m.Left - m.Right

	if d.codeKey != "" {
		barcode.Barcode(d.pdf, d.codeKey, m.Left+width-d.codeW, top+(band-d.codeH)/2, d.codeW, d.codeH, false)
		width -= d.codeW + d.cfg.CellPadding
	}

	lineH := footerFontPt * 1.4 / d.pdf.GetConversionRatio()
	y := top + (band-lineH)/2
	font := rollcall.FontSpec{Family: d.cfg.BodyFont.Family, Style: "I", Size: footerFontPt}
	d.setFont(font)

	if id := d.rc.DocumentID; id != "" {
		d.pdf.SetXY(m.Left, y)
		d.pdf.CellFormat(width/2, lineH, d.tr(d.cfg.Labels.Document+": "+id), "", 0, AlignLeft, false, 0, "")
	}
	d.pdf.SetXY(m.Left+width/2, y)
	d.pdf.CellFormat(width/2, lineH, d.tr(pageText(d.cfg.Labels.Page, d.pdf.PageNo()-d.pageOffset, d.pagesAlias)), "", 0, AlignRight, false, 0, "")
}

// pageText expands {page} and {pages} in a footer label. {pages} becomes
// alias, which gofpdf replaces with the page total when the document is
// closed.
func pageText(label string, page int, alias string) string {
	r := strings.NewReplacer("{page}", strconv.Itoa(page), "{pages}", alias)
	return r.Replace(label)
}

// verificationPayload is the text encoded in the footer code.
func verificationPayload(kind rollcall.VerificationKind, rc rollcall.ReportContext) string {
	if kind == rollcall.VerificationCode128 {
		return rc.DocumentID
	}
	return strings.Join([]string{rc.DocumentID, rc.Hub, rc.Date}, "|")
}

// registerVerification registers the footer barcode. The returned error is a
// warning: the sheet is still rendered without a code.
func (d *decorations) registerVerification() error {
	kind := d.cfg.Verification
	if kind == "" || kind == rollcall.VerificationNone {
		return nil
	}
	if d.rc.DocumentID == "" {
		return &rollcall.DegenerateLayoutError{Reason: "verification code requires a document ID"}
	}
	band := d.cfg.FooterHeight * 0.9
	if band <= 0 {
		return &rollcall.DegenerateLayoutError{Reason: "no footer space for the verification code"}
	}

	payload := verificationPayload(kind, d.rc)
	switch kind {
	case rollcall.VerificationQR:
		d.codeKey = barcode.RegisterQR(d.pdf, payload, qr.M, qr.Unicode)
		d.codeW, d.codeH = band, band
	case rollcall.VerificationCode128:
		d.codeKey = barcode.RegisterCode128(d.pdf, payload)
		d.codeW, d.codeH = band*4, band*0.6
	case rollcall.VerificationPDF417:
		d.codeKey = barcode.RegisterPdf417(d.pdf, payload, 4, 2)
		d.codeW, d.codeH = band*3, band*0.75
	default:
		return fmt.Errorf("%w: verification kind %q", rollcall.ErrInvalidParam, kind)
	}
	if d.codeKey == "" {
		// the barcode package records encoder failures on the document
		err := d.pdf.Error()
		d.pdf.ClearError()
		return fmt.Errorf("verification code: %w", err)
	}
	return nil
}

// registerLogo registers img on the document. Formats gofpdf cannot read
// natively are decoded and re-encoded as PNG.
func (d *decorations) registerLogo(img rollcall.Image) error {
	typ := strings.ToLower(strings.TrimSpace(img.Type))
	if typ == "" {
		typ = sniffImageType(img.Data)
	}
	data := img.Data
	switch typ {
	case "jpeg":
		typ = "jpg"
	case "png", "jpg", "gif":
	case "bmp", "tif", "tiff", "webp":
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("decode %s logo: %w", typ, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, decoded); err != nil {
			return err
		}
		data, typ = buf.Bytes(), "png"
	default:
		return fmt.Errorf("%w: logo image type %q", rollcall.ErrInvalidParam, typ)
	}

	info := d.pdf.RegisterImageOptionsReader(logoName, gofpdf.ImageOptions{ImageType: typ}, bytes.NewReader(data))
	if !d.pdf.Ok() {
		return d.pdf.Error()
	}
	if info == nil || info.Height() == 0 {
		return fmt.Errorf("%w: empty logo image", rollcall.ErrInvalidParam)
	}
	d.logo = &logoImage{ratio: info.Width() / info.Height()}
	return nil
}

func (d *decorations) logoHeight() float64 {
	return logoHeightPt / d.pdf.GetConversionRatio()
}

func (d *decorations) logoWidth() float64 {
	if d.logo == nil {
		return 0
	}
	return d.logoHeight() * d.logo.ratio
}

func (d *decorations) drawLogo(x, y float64) {
	d.pdf.ImageOptions(logoName, x, y, d.logoWidth(), d.logoHeight(), false, gofpdf.ImageOptions{}, 0, "")
}

// sniffImageType guesses an image type from its leading bytes.
func sniffImageType(data []byte) string {
	if bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")) {
		return "tiff"
	}
	switch http.DetectContentType(data) {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	case "image/webp":
		return "webp"
	}
	return ""
}
