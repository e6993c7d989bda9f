package extractous

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thc1102/extractous/internal/jvm/jvmtest"
)

const testContent = "hello\nworld\n"

// createTempFile 创建包含指定内容的临时测试文件
func createTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestExtractor(rt *jvmtest.Runtime) Extractor {
	return newExtractorWithRuntime(rt)
}

func TestExtractFileToString(t *testing.T) {
	rt := jvmtest.NewRuntime()
	extractor := newTestExtractor(rt)
	file := createTempFile(t, testContent)

	content, metadata, err := extractor.ExtractFileToString(file)
	require.NoError(t, err)
	assert.Equal(t, testContent, content)
	assert.Greater(t, len(metadata), 0, "metadata should contain at least one entry")
	assert.Equal(t, []string{"test-doc.txt"}, metadata["resourceName"])
	assert.Equal(t, []string{opParseFileToString}, rt.Calls())
}

func TestExtractFile(t *testing.T) {
	rt := jvmtest.NewRuntime()
	extractor := newTestExtractor(rt)
	file := createTempFile(t, testContent)

	reader, metadata, err := extractor.ExtractFile(file)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, testContent, string(content))
	assert.Greater(t, len(metadata), 0)
}

func TestExtractBytes(t *testing.T) {
	rt := jvmtest.NewRuntime()
	extractor := newTestExtractor(rt)

	reader, metadata, err := extractor.ExtractBytes([]byte(testContent))
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, testContent, string(content))
	assert.Greater(t, len(metadata), 0)
}

func TestExtractBytesToString(t *testing.T) {
	rt := jvmtest.NewRuntime()
	extractor := newTestExtractor(rt)

	content, metadata, err := extractor.ExtractBytesToString([]byte(testContent))
	require.NoError(t, err)
	assert.Equal(t, testContent, content)
	assert.NotNil(t, metadata)
}

func TestExtractURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testContent))
	}))
	defer srv.Close()

	rt := jvmtest.NewRuntime()
	extractor := newTestExtractor(rt)

	t.Run("ToStream", func(t *testing.T) {
		reader, metadata, err := extractor.ExtractURL(srv.URL)
		require.NoError(t, err)
		defer reader.Close()

		content, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, testContent, string(content))
		assert.Greater(t, len(metadata), 0)
	})

	t.Run("ToString", func(t *testing.T) {
		content, _, err := extractor.ExtractURLToString(srv.URL)
		require.NoError(t, err)
		assert.Equal(t, testContent, content)
	})
}

func TestExtractFileToStringMaxLength(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)

	extractor := newTestExtractor(rt).SetExtractStringMaxLength(5)
	content, _, err := extractor.ExtractFileToString(file)
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
	assert.LessOrEqual(t, len(content), 5)
}

// TestOverrideIsolation 同一个 Extractor 上带不同覆盖的两次调用互不影响
func TestOverrideIsolation(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)
	extractor := newTestExtractor(rt)

	short, _, err := extractor.ExtractFileToStringOpt(file, WithMaxLength(5))
	require.NoError(t, err)
	full, _, err := extractor.ExtractFileToStringOpt(file, WithMaxLength(-1))
	require.NoError(t, err)
	again, _, err := extractor.ExtractFileToString(file)
	require.NoError(t, err)

	assert.Equal(t, "hello", short)
	assert.Equal(t, testContent, full)
	assert.Equal(t, testContent, again, "per-call override must not leak into the extractor")
}

func TestExtractFileToStringXMLOverride(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)
	extractor := newTestExtractor(rt)

	content, _, err := extractor.ExtractFileToStringOpt(file, WithXMLOutput(true))
	require.NoError(t, err)
	assert.Contains(t, content, "<body>")
	assert.Contains(t, content, testContent)

	plain, _, err := extractor.ExtractFileToString(file)
	require.NoError(t, err)
	assert.Equal(t, testContent, plain)
}

func TestExtractFileEncodingOverride(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, "hi")
	extractor := newTestExtractor(rt)

	reader, _, err := extractor.ExtractFileOpt(file, WithEncoding(UTF16BE))
	require.NoError(t, err)
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 'h', 0x00, 'i'}, raw)
}

// TestIdempotence 对未变化的本地文件重复同一调用得到相同结果
func TestIdempotence(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)
	extractor := newTestExtractor(rt)

	c1, m1, err := extractor.ExtractFileToString(file)
	require.NoError(t, err)
	c2, m2, err := extractor.ExtractFileToString(file)
	require.NoError(t, err)

	assert.Equal(t, c1, c2)
	assert.Equal(t, m1, m2)
}

func TestExtractFileNonexistentPath(t *testing.T) {
	rt := jvmtest.NewRuntime()
	extractor := newTestExtractor(rt)

	_, _, err := extractor.ExtractFileToString("nonexistent_file.txt")
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, byte(1), remoteErr.Status)
	assert.Contains(t, remoteErr.Message, "Could not open file")
}

// TestConfigMarshaling 配置字段被逐项传递到远程配置对象
func TestConfigMarshaling(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)

	extractor := newTestExtractor(rt).
		SetPdfConfig(NewPdfParserConfig().SetOcrStrategy(OcrOnly).SetExtractInlineImages(true)).
		SetOcrConfig(NewTesseractOcrConfig().SetLanguage("eng+chi_sim").SetTimeoutSeconds(30))

	_, _, err := extractor.ExtractFileToString(file)
	require.NoError(t, err)

	pdf := rt.Config("org/apache/tika/parser/pdf/PDFParserConfig")
	require.NotNil(t, pdf)
	assert.Equal(t, "OCR_ONLY", pdf["setOcrStrategy"])
	assert.Equal(t, true, pdf["setExtractInlineImages"])

	ocr := rt.Config("org/apache/tika/parser/ocr/TesseractOCRConfig")
	require.NotNil(t, ocr)
	assert.Equal(t, "eng+chi_sim", ocr["setLanguage"])
	assert.Equal(t, 30, ocr["setTimeoutSeconds"])
}

func TestInvalidOcrStrategyFailsFast(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)

	extractor := newTestExtractor(rt).
		SetPdfConfig(NewPdfParserConfig().SetOcrStrategy(PdfOcrStrategy("BOGUS")))

	_, _, err := extractor.ExtractFileToString(file)
	var marshalErr *MarshalError
	require.ErrorAs(t, err, &marshalErr)
	assert.Empty(t, rt.Calls(), "invalid enum must be rejected before dispatch")
}

func TestDetect(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)

	mime, metadata, err := newTestExtractor(rt).Detect(file)
	require.NoError(t, err)
	assert.Contains(t, mime, "text/plain")
	assert.Greater(t, len(metadata), 0)
}

func TestRuntimeDiagnostics(t *testing.T) {
	rt := jvmtest.NewRuntime()

	mem, err := runtimeStatus(rt, opMemoryUsage)
	require.NoError(t, err)
	assert.Contains(t, mem, "heapUsed")

	gc, err := runtimeStatus(rt, opTriggerGC)
	require.NoError(t, err)
	assert.Contains(t, gc, "freedBytes")
}

func TestRuntimeErrors(t *testing.T) {
	file := createTempFile(t, testContent)

	t.Run("StartupFailure", func(t *testing.T) {
		rt := jvmtest.NewRuntime()
		rt.StartupErr = os.ErrNotExist
		_, _, err := newTestExtractor(rt).ExtractFileToString(file)

		var startupErr *RuntimeStartupError
		require.ErrorAs(t, err, &startupErr)
	})

	t.Run("AttachFailure", func(t *testing.T) {
		rt := jvmtest.NewRuntime()
		rt.AttachErr = os.ErrPermission
		_, _, err := newTestExtractor(rt).ExtractFileToString(file)

		var attachErr *AttachError
		require.ErrorAs(t, err, &attachErr)
	})
}
