package extractous

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thc1102/extractous/internal/jvm/jvmtest"
)

// TestStreamReaderSingleByteReads 每次 Read 对应一次远程读取，
// 单字节缓冲区应恰好在 len(content) 次读取后到达 EOF。
func TestStreamReaderSingleByteReads(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)

	reader, _, err := newTestExtractor(rt).ExtractFile(file)
	require.NoError(t, err)
	defer reader.Close()

	var got []byte
	buf := make([]byte, 1)
	reads := 0
	for {
		n, err := reader.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Equal(t, 1, n)
		got = append(got, buf[0])
		reads++
	}

	assert.Equal(t, testContent, string(got))
	assert.Equal(t, len(testContent), reads)
}

func TestStreamReaderEOFIdempotent(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)

	reader, _, err := newTestExtractor(rt).ExtractFile(file)
	require.NoError(t, err)
	defer reader.Close()

	_, err = io.ReadAll(reader)
	require.NoError(t, err)

	buf := make([]byte, 16)
	for i := 0; i < 3; i++ {
		n, err := reader.Read(buf)
		assert.Equal(t, 0, n)
		assert.Equal(t, io.EOF, err)
	}
}

func TestStreamReaderZeroLengthRead(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)

	reader, _, err := newTestExtractor(rt).ExtractFile(file)
	require.NoError(t, err)
	defer reader.Close()

	n, err := reader.Read(nil)
	assert.Equal(t, 0, n)
	assert.NoError(t, err)

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, testContent, string(content))
}

func TestStreamReaderReadAfterClose(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)

	reader, _, err := newTestExtractor(rt).ExtractFile(file)
	require.NoError(t, err)

	require.NoError(t, reader.Close())
	require.NoError(t, reader.Close(), "double close must be a no-op")

	_, err = reader.Read(make([]byte, 4))
	var streamErr *StreamIOError
	require.ErrorAs(t, err, &streamErr)
}

// TestStreamReaderRemoteFailure 远程读取中途失败映射为 StreamIOError
func TestStreamReaderRemoteFailure(t *testing.T) {
	rt := jvmtest.NewRuntime()
	rt.StreamFailAfter = 2
	file := createTempFile(t, testContent)

	reader, _, err := newTestExtractor(rt).ExtractFile(file)
	require.NoError(t, err)
	defer reader.Close()

	buf := make([]byte, 1)
	_, err = reader.Read(buf)
	require.NoError(t, err)
	_, err = reader.Read(buf)
	require.NoError(t, err)

	_, err = reader.Read(buf)
	var streamErr *StreamIOError
	require.ErrorAs(t, err, &streamErr)
}

// TestStreamMatchesString 同一文件的流式读取与一次性提取字节一致
func TestStreamMatchesString(t *testing.T) {
	rt := jvmtest.NewRuntime()
	file := createTempFile(t, testContent)
	extractor := newTestExtractor(rt)

	str, _, err := extractor.ExtractFileToString(file)
	require.NoError(t, err)

	reader, _, err := extractor.ExtractFile(file)
	require.NoError(t, err)
	defer reader.Close()
	streamed, err := io.ReadAll(reader)
	require.NoError(t, err)

	assert.Equal(t, str, string(streamed))
}
