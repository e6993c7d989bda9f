package extractous

// CharSet is the text encoding used when decoding a streamed extraction result.
type CharSet int

const (
	// UTF8 is the default encoding.
	UTF8 CharSet = iota
	USASCII
	UTF16BE
)

// String returns the canonical Java charset name.
func (c CharSet) String() string {
	switch c {
	case UTF8:
		return "UTF-8"
	case USASCII:
		return "US-ASCII"
	case UTF16BE:
		return "UTF-16BE"
	default:
		return "UTF-8"
	}
}

func (c CharSet) valid() bool {
	return c == UTF8 || c == USASCII || c == UTF16BE
}

// ParseCharSet maps a charset name to a CharSet. Accepts the canonical Java
// names ("UTF-8", "US-ASCII", "UTF-16BE").
func ParseCharSet(name string) (CharSet, bool) {
	switch name {
	case "UTF-8", "utf-8":
		return UTF8, true
	case "US-ASCII", "us-ascii":
		return USASCII, true
	case "UTF-16BE", "utf-16be":
		return UTF16BE, true
	default:
		return UTF8, false
	}
}

// PdfOcrStrategy controls how the PDF parser combines text extraction with OCR.
// Values mirror org.apache.tika.parser.pdf.PDFParserConfig.OCR_STRATEGY.
type PdfOcrStrategy string

const (
	NoOcr                PdfOcrStrategy = "NO_OCR"
	OcrOnly              PdfOcrStrategy = "OCR_ONLY"
	OcrAndTextExtraction PdfOcrStrategy = "OCR_AND_TEXT_EXTRACTION"
	OcrAuto              PdfOcrStrategy = "AUTO"
)

func (s PdfOcrStrategy) valid() bool {
	switch s {
	case NoOcr, OcrOnly, OcrAndTextExtraction, OcrAuto:
		return true
	}
	return false
}

// PdfParserConfig holds the PDF parser settings passed through to the engine.
// It is a plain value record: setters return a modified copy, so a config can
// be shared across extractors and goroutines without interference.
type PdfParserConfig struct {
	ocrStrategy                   PdfOcrStrategy
	extractInlineImages           bool
	extractUniqueInlineImagesOnly bool
	extractMarkedContent          bool
	extractAnnotationText         bool
}

// NewPdfParserConfig returns the default PDF configuration.
func NewPdfParserConfig() PdfParserConfig {
	return PdfParserConfig{
		ocrStrategy:           OcrAuto,
		extractAnnotationText: true,
	}
}

// SetOcrStrategy sets the OCR strategy used for PDF files.
func (c PdfParserConfig) SetOcrStrategy(s PdfOcrStrategy) PdfParserConfig {
	c.ocrStrategy = s
	return c
}

// SetExtractInlineImages enables extraction of inline embedded OBXImages.
func (c PdfParserConfig) SetExtractInlineImages(v bool) PdfParserConfig {
	c.extractInlineImages = v
	return c
}

// SetExtractUniqueInlineImagesOnly enables deduplication of inline images by
// their object id.
func (c PdfParserConfig) SetExtractUniqueInlineImagesOnly(v bool) PdfParserConfig {
	c.extractUniqueInlineImagesOnly = v
	return c
}

// SetExtractMarkedContent enables extraction of tagged (marked) content.
func (c PdfParserConfig) SetExtractMarkedContent(v bool) PdfParserConfig {
	c.extractMarkedContent = v
	return c
}

// SetExtractAnnotationText enables extraction of text within annotations.
func (c PdfParserConfig) SetExtractAnnotationText(v bool) PdfParserConfig {
	c.extractAnnotationText = v
	return c
}

// OfficeParserConfig holds the Microsoft Office parser settings.
type OfficeParserConfig struct {
	extractMacros                 bool
	includeDeletedContent         bool
	includeMoveFromContent        bool
	includeShapeBasedContent      bool
	includeHeadersAndFooters      bool
	concatenatePhoneticRuns       bool
	extractAllAlternativesFromMSG bool
}

// NewOfficeParserConfig returns the default Office configuration.
func NewOfficeParserConfig() OfficeParserConfig {
	return OfficeParserConfig{
		includeShapeBasedContent: true,
		includeHeadersAndFooters: true,
		concatenatePhoneticRuns:  true,
	}
}

// SetExtractMacros enables extraction of macros in Office files.
func (c OfficeParserConfig) SetExtractMacros(v bool) OfficeParserConfig {
	c.extractMacros = v
	return c
}

// SetIncludeDeletedContent includes content that is marked as deleted.
func (c OfficeParserConfig) SetIncludeDeletedContent(v bool) OfficeParserConfig {
	c.includeDeletedContent = v
	return c
}

// SetIncludeMoveFromContent includes moved text in track-changes documents.
func (c OfficeParserConfig) SetIncludeMoveFromContent(v bool) OfficeParserConfig {
	c.includeMoveFromContent = v
	return c
}

// SetIncludeShapeBasedContent includes text held in shapes and text boxes.
func (c OfficeParserConfig) SetIncludeShapeBasedContent(v bool) OfficeParserConfig {
	c.includeShapeBasedContent = v
	return c
}

// SetIncludeHeadersAndFooters includes header and footer text.
func (c OfficeParserConfig) SetIncludeHeadersAndFooters(v bool) OfficeParserConfig {
	c.includeHeadersAndFooters = v
	return c
}

// SetConcatenatePhoneticRuns concatenates phonetic (furigana) runs.
func (c OfficeParserConfig) SetConcatenatePhoneticRuns(v bool) OfficeParserConfig {
	c.concatenatePhoneticRuns = v
	return c
}

// SetExtractAllAlternativesFromMSG extracts all body alternatives from .msg files.
func (c OfficeParserConfig) SetExtractAllAlternativesFromMSG(v bool) OfficeParserConfig {
	c.extractAllAlternativesFromMSG = v
	return c
}

// TesseractOcrConfig holds the Tesseract OCR settings.
type TesseractOcrConfig struct {
	density                  int
	depth                    int
	timeoutSeconds           int
	enableImagePreprocessing bool
	applyRotation            bool
	language                 string
}

// NewTesseractOcrConfig returns the default OCR configuration.
func NewTesseractOcrConfig() TesseractOcrConfig {
	return TesseractOcrConfig{
		density:        300,
		depth:          4,
		timeoutSeconds: 120,
		language:       "eng",
	}
}

// SetDensity sets the DPI used when rendering pages for OCR.
func (c TesseractOcrConfig) SetDensity(v int) TesseractOcrConfig {
	c.density = v
	return c
}

// SetDepth sets the color depth used when rendering pages for OCR.
func (c TesseractOcrConfig) SetDepth(v int) TesseractOcrConfig {
	c.depth = v
	return c
}

// SetTimeoutSeconds bounds a single tesseract invocation.
func (c TesseractOcrConfig) SetTimeoutSeconds(v int) TesseractOcrConfig {
	c.timeoutSeconds = v
	return c
}

// SetEnableImagePreprocessing enables ImageMagick preprocessing.
func (c TesseractOcrConfig) SetEnableImagePreprocessing(v bool) TesseractOcrConfig {
	c.enableImagePreprocessing = v
	return c
}

// SetApplyRotation applies detected page rotation before OCR.
func (c TesseractOcrConfig) SetApplyRotation(v bool) TesseractOcrConfig {
	c.applyRotation = v
	return c
}

// SetLanguage sets the tesseract language pack, e.g. "eng" or "eng+chi_sim".
func (c TesseractOcrConfig) SetLanguage(lang string) TesseractOcrConfig {
	c.language = lang
	return c
}
