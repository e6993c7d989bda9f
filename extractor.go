// Package extractous extracts text and metadata from documents (PDF, Office
// formats, archives, images via OCR) by delegating parsing to an Apache Tika
// engine hosted in an embedded JVM. The caller supplies a data source — file
// path, in-memory buffer or URL — and receives the extracted text as a string
// or as a pull-based stream, plus a multi-valued metadata map.
package extractous

import (
	"github.com/thc1102/extractous/internal/jvm"
)

// Metadata maps a metadata key to its ordered values. One key may carry
// several values, e.g. repeated author fields. Never nil on success.
type Metadata = map[string][]string

// Document 单个文档（容器文档或嵌套文档）。
type Document struct {
	// Content 文档内容文本
	Content string
	// Metadata 文档元数据
	Metadata Metadata
}

// RecursiveExtraction 递归提取结果，包含容器文档及其所有嵌套文档。
//
// Documents[0] 恒为容器文档本身，Documents[1..] 是引擎发现嵌套文档的顺序。
// 成功结果的长度恒 >= 1：即使内容为空，容器文档也总是存在。
type RecursiveExtraction struct {
	Documents []Document
}

// Container 返回容器文档（第一个文档）。
func (r *RecursiveExtraction) Container() *Document {
	if len(r.Documents) == 0 {
		return nil
	}
	return &r.Documents[0]
}

// EmbeddedDocuments 返回所有嵌套文档（跳过容器）。没有嵌套文档时返回空切片。
func (r *RecursiveExtraction) EmbeddedDocuments() []Document {
	if len(r.Documents) > 1 {
		return r.Documents[1:]
	}
	return []Document{}
}

// TotalCount 返回文档总数（容器 + 嵌套）。
func (r *RecursiveExtraction) TotalCount() int {
	return len(r.Documents)
}

// Extractor extracts text from different file formats.
//
// Extractor is a value type configured in the builder style: every setter
// returns a new configured copy, so a configured Extractor can be shared and
// specialized by multiple callers without interference.
//
//	content, metadata, err := extractous.NewExtractor().
//		SetExtractStringMaxLength(1000).
//		ExtractFileToString("README.md")
//
// All extraction operations are synchronous and block the calling goroutine
// for their whole duration. The only durable shared state is the embedded
// runtime itself, created lazily on first use and kept for the process
// lifetime.
type Extractor struct {
	maxLength       int
	encoding        CharSet
	pdfConfig       PdfParserConfig
	officeConfig    OfficeParserConfig
	ocrConfig       TesseractOcrConfig
	xmlOutput       bool
	extractEmbedded bool
	runtime         jvm.Runtime
}

// NewExtractor returns an Extractor with default configuration: unbounded
// string length, UTF-8 stream encoding, plain-text output and embedded
// document extraction enabled.
func NewExtractor() Extractor {
	return newExtractorWithRuntime(jvm.Default())
}

func newExtractorWithRuntime(rt jvm.Runtime) Extractor {
	return Extractor{
		maxLength:       -1, // 负值表示不限制
		encoding:        UTF8,
		pdfConfig:       NewPdfParserConfig(),
		officeConfig:    NewOfficeParserConfig(),
		ocrConfig:       NewTesseractOcrConfig(),
		xmlOutput:       false,
		extractEmbedded: true,
		runtime:         rt,
	}
}

// SetExtractStringMaxLength bounds the length of text returned by the
// *ToString and *Recursive operations. Negative means unbounded. Default: -1.
func (e Extractor) SetExtractStringMaxLength(n int) Extractor {
	e.maxLength = n
	return e
}

// SetEncoding sets the charset used when decoding streamed results.
// Not used by the *ToString operations. Default: UTF8.
func (e Extractor) SetEncoding(c CharSet) Extractor {
	e.encoding = c
	return e
}

// SetPdfConfig sets the configuration for the PDF parser.
func (e Extractor) SetPdfConfig(c PdfParserConfig) Extractor {
	e.pdfConfig = c
	return e
}

// SetOfficeConfig sets the configuration for the Office parser.
func (e Extractor) SetOfficeConfig(c OfficeParserConfig) Extractor {
	e.officeConfig = c
	return e
}

// SetOcrConfig sets the configuration for Tesseract OCR.
func (e Extractor) SetOcrConfig(c TesseractOcrConfig) Extractor {
	e.ocrConfig = c
	return e
}

// SetXMLOutput selects XHTML instead of plain text output. Per-call overrides
// exist via the *Opt operations. Default: false.
func (e Extractor) SetXMLOutput(v bool) Extractor {
	e.xmlOutput = v
	return e
}

// SetExtractEmbedded controls whether embedded documents are parsed into the
// output of the non-recursive operations. Per-call overrides exist via the
// *Opt operations. Default: true.
func (e Extractor) SetExtractEmbedded(v bool) Extractor {
	e.extractEmbedded = v
	return e
}

// ExtractFile extracts text from a file path. Returns a stream of the
// extracted text, decoded with the extractor's encoding, plus metadata.
func (e Extractor) ExtractFile(filePath string) (*StreamReader, Metadata, error) {
	return e.ExtractFileOpt(filePath)
}

// ExtractFileOpt is ExtractFile with per-call overrides. An absent option
// falls back to the extractor's stored default.
func (e Extractor) ExtractFileOpt(filePath string, opts ...Option) (*StreamReader, Metadata, error) {
	return e.parseToStream(opParseFile, pathSource(filePath), e.effective(opts))
}

// ExtractBytes extracts text from an in-memory buffer. The buffer is shared
// with the engine for the duration of the call and must not be modified until
// the call returns.
func (e Extractor) ExtractBytes(buf []byte) (*StreamReader, Metadata, error) {
	return e.ExtractBytesOpt(buf)
}

// ExtractBytesOpt is ExtractBytes with per-call overrides.
func (e Extractor) ExtractBytesOpt(buf []byte, opts ...Option) (*StreamReader, Metadata, error) {
	return e.parseToStream(opParseBytes, bytesSource(buf), e.effective(opts))
}

// ExtractURL extracts text from a URL fetched by the engine.
func (e Extractor) ExtractURL(url string) (*StreamReader, Metadata, error) {
	return e.ExtractURLOpt(url)
}

// ExtractURLOpt is ExtractURL with per-call overrides.
func (e Extractor) ExtractURLOpt(url string, opts ...Option) (*StreamReader, Metadata, error) {
	return e.parseToStream(opParseURL, urlSource(url), e.effective(opts))
}

// ExtractFileToString extracts text from a file path into a string bounded by
// the extractor's max length.
func (e Extractor) ExtractFileToString(filePath string) (string, Metadata, error) {
	return e.ExtractFileToStringOpt(filePath)
}

// ExtractFileToStringOpt is ExtractFileToString with per-call overrides.
func (e Extractor) ExtractFileToStringOpt(filePath string, opts ...Option) (string, Metadata, error) {
	return e.parseToString(opParseFileToString, pathSource(filePath), e.effective(opts))
}

// ExtractBytesToString extracts text from an in-memory buffer into a string.
func (e Extractor) ExtractBytesToString(buf []byte) (string, Metadata, error) {
	return e.ExtractBytesToStringOpt(buf)
}

// ExtractBytesToStringOpt is ExtractBytesToString with per-call overrides.
func (e Extractor) ExtractBytesToStringOpt(buf []byte, opts ...Option) (string, Metadata, error) {
	return e.parseToString(opParseBytesToString, bytesSource(buf), e.effective(opts))
}

// ExtractURLToString extracts text from a URL into a string.
func (e Extractor) ExtractURLToString(url string) (string, Metadata, error) {
	return e.ExtractURLToStringOpt(url)
}

// ExtractURLToStringOpt is ExtractURLToString with per-call overrides.
func (e Extractor) ExtractURLToStringOpt(url string, opts ...Option) (string, Metadata, error) {
	return e.parseToString(opParseURLToString, urlSource(url), e.effective(opts))
}

// ExtractFileRecursive 递归提取文件内容，包括所有嵌套文档。
//
// 返回的 RecursiveExtraction 中 Documents[0] 是容器文档本身，
// Documents[1..] 是所有嵌套文档（附件、嵌入对象等）。
// 嵌套文档解析失败不会使整个调用失败：失败被记录在该文档的元数据里，
// 其余文档照常返回。
func (e Extractor) ExtractFileRecursive(filePath string) (*RecursiveExtraction, error) {
	return e.ExtractFileRecursiveOpt(filePath)
}

// ExtractFileRecursiveOpt 带可选覆盖的递归文件提取。
func (e Extractor) ExtractFileRecursiveOpt(filePath string, opts ...Option) (*RecursiveExtraction, error) {
	return e.parseRecursive(opParseFileRecursive, pathSource(filePath), e.effective(opts))
}

// ExtractBytesRecursive 递归提取字节数组内容，包括所有嵌套文档。
func (e Extractor) ExtractBytesRecursive(buf []byte) (*RecursiveExtraction, error) {
	return e.ExtractBytesRecursiveOpt(buf)
}

// ExtractBytesRecursiveOpt 带可选覆盖的递归字节提取。
func (e Extractor) ExtractBytesRecursiveOpt(buf []byte, opts ...Option) (*RecursiveExtraction, error) {
	return e.parseRecursive(opParseBytesRecursive, bytesSource(buf), e.effective(opts))
}

// ExtractURLRecursive 递归提取 URL 内容，包括所有嵌套文档。
func (e Extractor) ExtractURLRecursive(url string) (*RecursiveExtraction, error) {
	return e.ExtractURLRecursiveOpt(url)
}

// ExtractURLRecursiveOpt 带可选覆盖的递归 URL 提取。
func (e Extractor) ExtractURLRecursiveOpt(url string, opts ...Option) (*RecursiveExtraction, error) {
	return e.parseRecursive(opParseURLRecursive, urlSource(url), e.effective(opts))
}

// Detect returns the mime type of the given file as detected by the engine,
// plus the metadata gathered while detecting.
func (e Extractor) Detect(filePath string) (string, Metadata, error) {
	return e.detect(filePath)
}
