package extractous

// Option 是单次调用的配置覆盖。缺省的项回退到 Extractor 的存量默认值，
// 合并发生在请求发往引擎之前；覆盖只作用于本次调用，不影响 Extractor 本身。
//
// 与结果形态无关的覆盖会被忽略：WithEncoding 只作用于流式操作，
// WithMaxLength 只作用于字符串与递归操作，WithExtractEmbedded
// 不作用于递归操作（递归本身就是嵌套提取）。
type Option func(*request)

// WithEncoding 覆盖本次调用的流解码字符集。
func WithEncoding(c CharSet) Option {
	return func(r *request) { r.encoding = c }
}

// WithXMLOutput 覆盖本次调用是否输出 XHTML。
func WithXMLOutput(asXML bool) Option {
	return func(r *request) { r.xmlOutput = asXML }
}

// WithExtractEmbedded 覆盖本次调用是否解析嵌套文档。
func WithExtractEmbedded(v bool) Option {
	return func(r *request) { r.extractEmbedded = v }
}

// WithMaxLength 覆盖本次调用返回文本的最大长度，负值表示不限制。
func WithMaxLength(n int) Option {
	return func(r *request) { r.maxLength = n }
}

// request 是一次调用的生效参数：Extractor 默认值与调用覆盖合并后的元组。
type request struct {
	maxLength       int
	encoding        CharSet
	pdfConfig       PdfParserConfig
	officeConfig    OfficeParserConfig
	ocrConfig       TesseractOcrConfig
	xmlOutput       bool
	extractEmbedded bool
}

// effective 以 Extractor 的默认值为基底应用覆盖，覆盖优先。
func (e Extractor) effective(opts []Option) request {
	r := request{
		maxLength:       e.maxLength,
		encoding:        e.encoding,
		pdfConfig:       e.pdfConfig,
		officeConfig:    e.officeConfig,
		ocrConfig:       e.ocrConfig,
		xmlOutput:       e.xmlOutput,
		extractEmbedded: e.extractEmbedded,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
