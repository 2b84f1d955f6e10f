package rollcall

// Page orientations, sizes and units accepted by Config.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"

	PageSizeA3     = "A3"
	PageSizeA4     = "A4"
	PageSizeA5     = "A5"
	PageSizeLetter = "Letter"
	PageSizeLegal  = "Legal"

	UnitPoint      = "pt"
	UnitMillimeter = "mm"
	UnitCentimeter = "cm"
	UnitInch       = "inch"
)

// FontSpec defines font properties for text rendering. Family must be one of
// the PDF core fonts (Helvetica, Arial, Times, Courier).
type FontSpec struct {
	Family string
	Style  string  // "", "B", "I", "BI"
	Size   float64 // in points
}

// Margins are page margins in the configured unit.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Labels are the literal strings printed on a sheet.
type Labels struct {
	Hub         string // prefix of the hub line
	Date        string // prefix of the date line
	Source      string // prefix of the optional source line
	Signature   string // header of the signature column
	RowNumber   string // header of the optional row number column
	Coordinator string // text before the coordinator signature line
	Document    string // prefix of the document ID in the footer
	Page        string // footer page text; {page} and {pages} are replaced
}

// DefaultLabels returns English labels.
func DefaultLabels() Labels {
	return Labels{
		Hub:         "Training hub",
		Date:        "Date",
		Source:      "Source",
		Signature:   "Signature",
		RowNumber:   "#",
		Coordinator: "Coordinator signature:",
		Document:    "Document",
		Page:        "Page {page} of {pages}",
	}
}

// PortugueseLabels returns the labels used by the original Brazilian sheets.
func PortugueseLabels() Labels {
	return Labels{
		Hub:         "Polo de Instrução",
		Date:        "Data",
		Source:      "Fonte",
		Signature:   "Assinatura",
		RowNumber:   "#",
		Coordinator: "Assinatura do Coordenador:",
		Document:    "Documento",
		Page:        "Página {page} de {pages}",
	}
}

// VerificationKind selects the symbology of the footer verification code.
type VerificationKind string

const (
	VerificationNone    VerificationKind = "none"
	VerificationQR      VerificationKind = "qr"
	VerificationCode128 VerificationKind = "code128"
	VerificationPDF417  VerificationKind = "pdf417"
)

// Image is an in-memory image. Type is "png", "jpg", "gif", "bmp", "tiff"
// or "webp"; an empty Type is detected from the data.
type Image struct {
	Data []byte
	Type string
}

// Config holds the layout parameters of a sheet. The zero value is not
// usable; start from DefaultConfig or NewConfig.
type Config struct {
	PageSize    string
	Orientation string
	Unit        string
	Margins     Margins

	// UsableWidth is the printable width available to the grid. Zero means
	// page width minus left and right margins.
	UsableWidth float64
	// SignatureWidth is the fixed width of the trailing signature column.
	SignatureWidth float64
	// PageBreakThreshold is the vertical extent of the grid body on one page,
	// measured from the bottom of the header row. Zero derives it from the
	// page height, margins, footer and title block.
	PageBreakThreshold float64
	// RowHeight is the constant height of header and body rows.
	RowHeight float64

	CellPadding    float64 // added on each side of measured content
	MinColumnWidth float64 // floor width used when there is no content to measure
	FooterHeight   float64 // space reserved above the bottom margin

	TitleFont  FontSpec
	HeaderFont FontSpec
	BodyFont   FontSpec

	FillSlack       bool              // distribute unused width proportionally
	RowNumbers      bool              // prepend a "#" column numbering the rows
	CoordinatorLine bool              // print the coordinator signature line after the grid
	ColumnAlign     map[string]string // per column "L", "C" or "R"

	Labels       Labels
	Verification VerificationKind
	Letterhead   []byte // PDF whose first page is drawn behind every page
	Logo         *Image

	Author   string
	Compress bool
}

// DefaultConfig returns portrait A4 in millimeters with the layout of the
// original paper sheets.
func DefaultConfig() Config {
	return Config{
		PageSize:        PageSizeA4,
		Orientation:     OrientationPortrait,
		Unit:            UnitMillimeter,
		Margins:         Margins{Top: 12, Right: 12, Bottom: 12, Left: 12},
		SignatureWidth:  60,
		RowHeight:       8,
		CellPadding:     1.5,
		MinColumnWidth:  10,
		FooterHeight:    12,
		TitleFont:       FontSpec{Family: "Helvetica", Style: "B", Size: 14},
		HeaderFont:      FontSpec{Family: "Helvetica", Style: "B", Size: 10},
		BodyFont:        FontSpec{Family: "Helvetica", Style: "", Size: 10},
		FillSlack:       true,
		CoordinatorLine: true,
		Labels:          DefaultLabels(),
		Verification:    VerificationNone,
		Compress:        true,
	}
}

// Option is a functional option for configuring a sheet via NewConfig.
type Option func(*Config)

// NewConfig creates a Config from DefaultConfig and the given options.
//
// Example:
//
//	cfg := rollcall.NewConfig(
//	    rollcall.WithPageSize(rollcall.PageSizeA4),
//	    rollcall.WithOrientation(rollcall.OrientationLandscape),
//	    rollcall.WithSignatureWidth(70),
//	)
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithPageSize sets the page size by name.
// Use PageSizeA3, PageSizeA4, PageSizeA5, PageSizeLetter or PageSizeLegal.
func WithPageSize(size string) Option {
	return func(c *Config) {
		c.PageSize = size
	}
}

// WithOrientation sets the page orientation.
// Use OrientationPortrait ("portrait") or OrientationLandscape ("landscape").
func WithOrientation(orientation string) Option {
	return func(c *Config) {
		c.Orientation = orientation
	}
}

// WithUnit sets the measurement unit for every length in the Config.
func WithUnit(unit string) Option {
	return func(c *Config) {
		c.Unit = unit
	}
}

// WithMargins sets the page margins.
func WithMargins(m Margins) Option {
	return func(c *Config) {
		c.Margins = m
	}
}

// WithUsableWidth overrides the printable width of the grid.
func WithUsableWidth(w float64) Option {
	return func(c *Config) {
		c.UsableWidth = w
	}
}

// WithSignatureWidth sets the fixed width of the signature column.
func WithSignatureWidth(w float64) Option {
	return func(c *Config) {
		c.SignatureWidth = w
	}
}

// WithPageBreakThreshold sets the body height available on each page.
func WithPageBreakThreshold(h float64) Option {
	return func(c *Config) {
		c.PageBreakThreshold = h
	}
}

// WithRowHeight sets the constant row height.
func WithRowHeight(h float64) Option {
	return func(c *Config) {
		c.RowHeight = h
	}
}

// WithCellPadding sets the horizontal padding added on each side of a cell.
func WithCellPadding(p float64) Option {
	return func(c *Config) {
		c.CellPadding = p
	}
}

// WithMinColumnWidth sets the floor width used for columns without content.
func WithMinColumnWidth(w float64) Option {
	return func(c *Config) {
		c.MinColumnWidth = w
	}
}

// WithFonts sets the title, header and body fonts.
func WithFonts(title, header, body FontSpec) Option {
	return func(c *Config) {
		c.TitleFont = title
		c.HeaderFont = header
		c.BodyFont = body
	}
}

// WithFillSlack selects whether unused width is spread over the data columns.
func WithFillSlack(fill bool) Option {
	return func(c *Config) {
		c.FillSlack = fill
	}
}

// WithRowNumbers prepends a column numbering the rows from 1.
func WithRowNumbers(on bool) Option {
	return func(c *Config) {
		c.RowNumbers = on
	}
}

// WithCoordinatorLine toggles the coordinator signature line after the grid.
func WithCoordinatorLine(on bool) Option {
	return func(c *Config) {
		c.CoordinatorLine = on
	}
}

// WithColumnAlign sets the alignment ("L", "C", "R") of a column.
func WithColumnAlign(column, align string) Option {
	return func(c *Config) {
		if c.ColumnAlign == nil {
			c.ColumnAlign = make(map[string]string)
		}
		c.ColumnAlign[column] = align
	}
}

// WithLabels sets the literal strings printed on the sheet.
func WithLabels(l Labels) Option {
	return func(c *Config) {
		c.Labels = l
	}
}

// WithVerification adds a footer code encoding the document ID, hub and date.
func WithVerification(kind VerificationKind) Option {
	return func(c *Config) {
		c.Verification = kind
	}
}

// WithLetterhead draws the first page of the given PDF behind every page.
func WithLetterhead(pdf []byte) Option {
	return func(c *Config) {
		c.Letterhead = pdf
	}
}

// WithLogo places an image at the right of the title block.
func WithLogo(img Image) Option {
	return func(c *Config) {
		c.Logo = &img
	}
}

// WithAuthor sets the document author metadata.
func WithAuthor(author string) Option {
	return func(c *Config) {
		c.Author = author
	}
}

// WithCompression toggles page stream compression.
func WithCompression(on bool) Option {
	return func(c *Config) {
		c.Compress = on
	}
}
