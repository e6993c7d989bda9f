package extractous

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thc1102/extractous/internal/jvm/jvmtest"
)

// createTempZip 创建带嵌套条目的 zip 容器测试文件
func createTempZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		content, ok := entries[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "container.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

// TestExtractFileRecursivePlainDocument 无嵌套文档时只返回容器本身
func TestExtractFileRecursivePlainDocument(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)

	result, err := newTestExtractor(rt).ExtractFileRecursive(file)
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalCount())
	assert.Len(t, result.EmbeddedDocuments(), 0)

	container := result.Container()
	require.NotNil(t, container)
	assert.Equal(t, testContent, container.Content)
	assert.Greater(t, len(container.Metadata), 0)
}

func TestExtractFileRecursiveWithEmbedded(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempZip(t, map[string]string{
		"a.txt": "first embedded",
		"b.txt": "second embedded",
	})

	result, err := newTestExtractor(rt).ExtractFileRecursive(file)
	require.NoError(t, err)

	// 容器 + 两个嵌套文档，顺序与引擎发现顺序一致
	require.Equal(t, 3, result.TotalCount())
	assert.Equal(t, result.TotalCount(), len(result.Documents))
	assert.Len(t, result.EmbeddedDocuments(), result.TotalCount()-1)

	embedded := result.EmbeddedDocuments()
	assert.Equal(t, "first embedded", embedded[0].Content)
	assert.Equal(t, []string{"a.txt"}, embedded[0].Metadata["resourceName"])
	assert.Equal(t, "second embedded", embedded[1].Content)

	// 正文已从元数据中提升，不再以 X-TIKA:content 键出现
	for _, doc := range result.Documents {
		assert.NotContains(t, doc.Metadata, "X-TIKA:content")
	}
}

func TestExtractBytesRecursive(t *testing.T) {
	rt := jvmtest.NewRuntime()

	result, err := newTestExtractor(rt).ExtractBytesRecursive([]byte(testContent))
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount())
	assert.Equal(t, testContent, result.Container().Content)
}

func TestExtractFileRecursiveMaxLength(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempZip(t, map[string]string{
		"a.txt": "this is a long embedded document",
		"b.txt": "short",
	})

	result, err := newTestExtractor(rt).ExtractFileRecursiveOpt(file, WithMaxLength(8))
	require.NoError(t, err)

	for _, doc := range result.Documents {
		assert.LessOrEqual(t, len(doc.Content), 8)
	}
}

func TestExtractFileRecursiveNonexistentPath(t *testing.T) {
	rt := jvmtest.NewRuntime()

	_, err := newTestExtractor(rt).ExtractFileRecursive("nonexistent_file.txt")
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
}

// TestExtractFileRecursiveEmptyList 空文档列表是协议违例而不是空结果
func TestExtractFileRecursiveEmptyList(t *testing.T) {
	rt := jvmtest.NewRuntime()
	rt.ForceEmptyRecursive = true
	file := createTempFile(t, testContent)

	_, err := newTestExtractor(rt).ExtractFileRecursive(file)
	var malformedErr *MalformedResultError
	require.ErrorAs(t, err, &malformedErr)
}

func TestRecursiveAccessorsOnEmptyValue(t *testing.T) {
	var result RecursiveExtraction
	assert.Nil(t, result.Container())
	assert.Len(t, result.EmbeddedDocuments(), 0)
	assert.Equal(t, 0, result.TotalCount())
}
