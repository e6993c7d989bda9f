package extractous

import (
	"io"
	"os"
	"runtime"

	"github.com/thc1102/extractous/internal/jvm"
)

// StreamReader streams extraction output from the engine. It implements
// io.ReadCloser and can be used to perform buffered reading:
//
//	reader, metadata, err := extractous.NewExtractor().ExtractFile("README.md")
//	if err != nil { ... }
//	defer reader.Close()
//	content, err := io.ReadAll(bufio.NewReader(reader))
//
// Each Read performs exactly one remote read sized to the caller's buffer —
// there is no read-ahead and no caching across calls, so callers wanting
// larger reads should supply larger buffers or compose a bufio.Reader on top.
//
// A StreamReader owns its remote handle exclusively and is not safe for use
// by multiple goroutines at once. Close releases the remote handle; readers
// that are garbage collected without Close are released by a finalizer.
type StreamReader struct {
	remote jvm.Obj
	eof    bool
	closed bool
}

func newStreamReader(remote jvm.Obj) *StreamReader {
	r := &StreamReader{remote: remote}
	// 句柄跨内存域，不能依赖调用方记得 Close；终结器兜底通知远程侧
	runtime.SetFinalizer(r, (*StreamReader).finalize)
	return r
}

// Read 从远程流拉取至多 len(p) 字节。返回 0, io.EOF 表示流结束；
// 到达 EOF 之后的再次读取仍然安全地返回 io.EOF。
func (r *StreamReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, &StreamIOError{Err: os.ErrClosed}
	}
	if r.eof {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	res, err := r.remote.Call("readNBytes", jvm.Return{Kind: jvm.Bytes}, len(p))
	if err != nil {
		return 0, &StreamIOError{Err: err}
	}
	chunk := res.([]byte)
	if len(chunk) == 0 {
		r.eof = true
		return 0, io.EOF
	}
	return copy(p, chunk), nil
}

// Close 关闭远程读取器并释放句柄。重复 Close 是空操作。
func (r *StreamReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	runtime.SetFinalizer(r, nil)

	_, err := r.remote.Call("close", jvm.Return{Kind: jvm.Void})
	r.remote.Release()
	if err != nil {
		return &StreamIOError{Err: err}
	}
	return nil
}

func (r *StreamReader) finalize() {
	_ = r.Close()
}
