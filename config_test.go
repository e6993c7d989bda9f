package extractous

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thc1102/extractous/internal/jvm/jvmtest"
)

func TestCharSetNames(t *testing.T) {
	assert.Equal(t, "UTF-8", UTF8.String())
	assert.Equal(t, "US-ASCII", USASCII.String())
	assert.Equal(t, "UTF-16BE", UTF16BE.String())
}

func TestParseCharSet(t *testing.T) {
	cases := []struct {
		name string
		want CharSet
		ok   bool
	}{
		{"UTF-8", UTF8, true},
		{"utf-8", UTF8, true},
		{"US-ASCII", USASCII, true},
		{"UTF-16BE", UTF16BE, true},
		{"latin-1", UTF8, false},
		{"", UTF8, false},
	}
	for _, c := range cases {
		got, ok := ParseCharSet(c.name)
		assert.Equal(t, c.ok, ok, c.name)
		assert.Equal(t, c.want, got, c.name)
	}
}

// TestExtractorBuilderImmutability 设置器返回副本，原 Extractor 不被修改
func TestExtractorBuilderImmutability(t *testing.T) {
	rt := jvmtest.NewRuntime()
	base := newTestExtractor(rt)

	derived := base.
		SetExtractStringMaxLength(10).
		SetEncoding(UTF16BE).
		SetXMLOutput(true).
		SetExtractEmbedded(false)

	assert.Equal(t, -1, base.maxLength)
	assert.Equal(t, UTF8, base.encoding)
	assert.False(t, base.xmlOutput)
	assert.True(t, base.extractEmbedded)

	assert.Equal(t, 10, derived.maxLength)
	assert.Equal(t, UTF16BE, derived.encoding)
	assert.True(t, derived.xmlOutput)
	assert.False(t, derived.extractEmbedded)
}

func TestConfigBuilderImmutability(t *testing.T) {
	base := NewPdfParserConfig()
	derived := base.SetOcrStrategy(NoOcr).SetExtractInlineImages(true)

	assert.Equal(t, OcrAuto, base.ocrStrategy)
	assert.False(t, base.extractInlineImages)
	assert.Equal(t, NoOcr, derived.ocrStrategy)
	assert.True(t, derived.extractInlineImages)
}

func TestEffectiveMerge(t *testing.T) {
	rt := jvmtest.NewRuntime()
	extractor := newTestExtractor(rt).SetExtractStringMaxLength(100)

	// 无覆盖时生效参数等于存量默认值
	req := extractor.effective(nil)
	assert.Equal(t, 100, req.maxLength)
	assert.Equal(t, UTF8, req.encoding)
	assert.True(t, req.extractEmbedded)

	// 覆盖只替换被指定的项
	req = extractor.effective([]Option{WithMaxLength(5), WithXMLOutput(true)})
	assert.Equal(t, 5, req.maxLength)
	assert.True(t, req.xmlOutput)
	assert.Equal(t, UTF8, req.encoding)
	assert.True(t, req.extractEmbedded)

	// 后写的覆盖优先
	req = extractor.effective([]Option{WithMaxLength(5), WithMaxLength(7)})
	assert.Equal(t, 7, req.maxLength)
}

func TestInvalidEncodingRejected(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)

	_, _, err := newTestExtractor(rt).ExtractFileOpt(file, WithEncoding(CharSet(42)))
	var marshalErr *MarshalError
	require.ErrorAs(t, err, &marshalErr)
}

func TestPdfOcrStrategyValues(t *testing.T) {
	for _, s := range []PdfOcrStrategy{NoOcr, OcrOnly, OcrAndTextExtraction, OcrAuto} {
		assert.True(t, s.valid(), string(s))
	}
	assert.False(t, PdfOcrStrategy("BOGUS").valid())
}
