// Package jvmtest 提供一个进程内的假运行时，按 TikaNativeMain 的调用协议
// 实现最小的提取引擎（纯文本与 zip 容器），供桥接层测试使用，
// 免去真实 JVM 与 tika-native 构件。
package jvmtest

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/thc1102/extractous/internal/jvm"
)

// Runtime 是 jvm.Runtime 的测试替身。
// 零值即可用；导出字段用于注入故障和观察调用。
type Runtime struct {
	// StartupErr 非空时，Attach 以运行时启动失败返回（包装 jvm.ErrStartup）。
	StartupErr error
	// AttachErr 非空时，Attach 以线程附着失败返回（包装 jvm.ErrAttach）。
	AttachErr error
	// ForceEmptyRecursive 使递归调用返回空文档列表（协议违例，用于测试）。
	ForceEmptyRecursive bool
	// StreamFailAfter 大于 0 时，第 N+1 次远程读抛出 IO 异常。
	StreamFailAfter int

	mu      sync.Mutex
	calls   []string
	reads   int
	configs map[string]map[string]any
}

func NewRuntime() *Runtime { return &Runtime{} }

// Calls 返回按序记录的远程操作名。
func (r *Runtime) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Config 返回某个配置类最近一次被填充的 setter 调用记录。
func (r *Runtime) Config(class string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configs[class]
}

func (r *Runtime) Attach() (jvm.Env, error) {
	if r.StartupErr != nil {
		return nil, fmt.Errorf("%w: %v", jvm.ErrStartup, r.StartupErr)
	}
	if r.AttachErr != nil {
		return nil, fmt.Errorf("%w: %v", jvm.ErrAttach, r.AttachErr)
	}
	return &env{rt: r}, nil
}

func (r *Runtime) record(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
}

func (r *Runtime) recordConfig(class string, props map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.configs == nil {
		r.configs = make(map[string]map[string]any)
	}
	r.configs[class] = props
}

type env struct {
	rt *Runtime
}

func (e *env) NewString(s string) (jvm.Obj, error) {
	return &strObj{s: s}, nil
}

func (e *env) NewDirectBuffer(buf []byte) (jvm.Obj, error) {
	return &bufObj{b: buf}, nil
}

func (e *env) NewObject(class string, args ...any) (jvm.Obj, error) {
	props := make(map[string]any)
	e.rt.recordConfig(class, props)
	return &cfgObj{class: class, props: props}, nil
}

func (e *env) CallStatic(class, method string, ret jvm.Return, args ...any) (any, error) {
	if class != "ai/yobix/TikaNativeMain" {
		return nil, fmt.Errorf("jvmtest: unknown class %s", class)
	}
	e.rt.record(method)

	switch method {
	case "getMemoryUsage":
		return okString(`{"heapUsed":1048576,"heapMax":268435456}`, nil), nil
	case "triggerGarbageCollection":
		return okString(`{"freedBytes":524288}`, nil), nil
	case "detect":
		data, name, rerr := e.load(method, args[0])
		if rerr != nil {
			return rerr, nil
		}
		return okString(mimeOf(data), baseMetadata(name, data)), nil
	}

	src := args[0]
	data, name, rerr := e.load(method, src)
	if rerr != nil {
		return rerr, nil
	}

	switch {
	case strings.HasSuffix(method, "Recursive"):
		maxLen := args[1].(int)
		asXML := args[5].(bool)
		if e.rt.ForceEmptyRecursive {
			return &resultObj{status: 0, mdList: []map[string][]string{}}, nil
		}
		return &resultObj{status: 0, mdList: recursiveDocs(name, data, maxLen, asXML)}, nil

	case strings.HasSuffix(method, "ToString"):
		maxLen := args[1].(int)
		asXML := args[5].(bool)
		embedded := args[6].(bool)
		content := truncate(extract(data, asXML, embedded), maxLen)
		return &resultObj{status: 0, content: content, md: baseMetadata(name, data)}, nil

	default: // parseFile / parseBytes / parseUrl：流式
		charset := args[1].(*strObj).s
		asXML := args[5].(bool)
		embedded := args[6].(bool)
		content := extract(data, asXML, embedded)
		reader := &readerObj{rt: e.rt, r: bytes.NewReader(encode(content, charset))}
		return &resultObj{status: 0, reader: reader, md: baseMetadata(name, data)}, nil
	}
}

// load 读出数据源内容。失败时返回与 tika-native 同形的错误结果对象
// （状态字节 1，IO 错误），而不是本地 error。
func (e *env) load(method string, src any) (data []byte, name string, errResult *resultObj) {
	switch s := src.(type) {
	case *bufObj:
		return s.b, "", nil
	case *strObj:
		if strings.Contains(method, "Url") {
			resp, err := http.Get(s.s)
			if err != nil {
				return nil, "", &resultObj{status: 1, errMsg: "IO error occurred: " + err.Error()}
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return nil, "", &resultObj{status: 1, errMsg: "IO error occurred: HTTP " + resp.Status}
			}
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, "", &resultObj{status: 1, errMsg: "IO error occurred: " + err.Error()}
			}
			return body, "", nil
		}
		b, err := os.ReadFile(s.s)
		if err != nil {
			return nil, "", &resultObj{status: 1, errMsg: "Could not open file: " + err.Error()}
		}
		return b, filepath.Base(s.s), nil
	default:
		return nil, "", &resultObj{status: 2, errMsg: fmt.Sprintf("unsupported data source %T", src)}
	}
}

func okString(content string, md map[string][]string) *resultObj {
	if md == nil {
		md = map[string][]string{}
	}
	return &resultObj{status: 0, content: content, md: md}
}

func isZip(data []byte) bool { return bytes.HasPrefix(data, []byte("PK\x03\x04")) }

func mimeOf(data []byte) string {
	if isZip(data) {
		return "application/zip"
	}
	return "text/plain; charset=UTF-8"
}

func baseMetadata(name string, data []byte) map[string][]string {
	md := map[string][]string{
		"Content-Type":   {mimeOf(data)},
		"Content-Length": {strconv.Itoa(len(data))},
		"X-Parsed-By":    {"org.apache.tika.parser.DefaultParser"},
	}
	if name != "" {
		md["resourceName"] = []string{name}
	}
	return md
}

// extract 是假引擎的全部“解析”能力：纯文本原样返回，
// zip 容器在允许嵌套时拼接各条目文本。
func extract(data []byte, asXML, embedded bool) string {
	var text string
	if isZip(data) {
		if embedded {
			var parts []string
			for _, entry := range zipEntries(data) {
				parts = append(parts, entry.text)
			}
			text = strings.Join(parts, "\n\n")
		}
	} else {
		text = string(data)
	}
	if asXML {
		return "<html><body><p>" + text + "</p></body></html>"
	}
	return text
}

type zipEntry struct {
	name string
	text string
}

func zipEntries(data []byte) []zipEntry {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil
	}
	var entries []zipEntry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		entries = append(entries, zipEntry{name: f.Name, text: string(b)})
	}
	return entries
}

// recursiveDocs 生成递归结果的元数据列表：第 0 项是容器，
// 各文档的正文放在 X-TIKA:content 值里，与 RecursiveParserWrapperHandler 一致。
func recursiveDocs(name string, data []byte, maxLen int, asXML bool) []map[string][]string {
	wrap := func(text string) string {
		if asXML {
			text = "<html><body><p>" + text + "</p></body></html>"
		}
		return truncate(text, maxLen)
	}

	container := baseMetadata(name, data)
	var docs []map[string][]string
	if isZip(data) {
		container["X-TIKA:content"] = []string{wrap("")}
		docs = append(docs, container)
		for _, entry := range zipEntries(data) {
			docs = append(docs, map[string][]string{
				"Content-Type":                  {"text/plain; charset=UTF-8"},
				"resourceName":                  {entry.name},
				"X-TIKA:content":                {wrap(entry.text)},
				"X-TIKA:embedded_resource_path": {"/" + entry.name},
				"X-TIKA:embedded_depth":         {"1"},
			})
		}
		return docs
	}
	container["X-TIKA:content"] = []string{wrap(string(data))}
	return append(docs, container)
}

func truncate(s string, maxLen int) string {
	if maxLen >= 0 && len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}

// encode 按字符集编码流内容，未知名称回退 UTF-8（与 Java 侧行为一致）。
func encode(content, charset string) []byte {
	switch charset {
	case "UTF-16BE":
		units := utf16.Encode([]rune(content))
		out := make([]byte, len(units)*2)
		for i, u := range units {
			binary.BigEndian.PutUint16(out[i*2:], u)
		}
		return out
	default:
		return []byte(content)
	}
}

type strObj struct{ s string }

func (o *strObj) Class() string { return "java/lang/String" }
func (o *strObj) Release()      {}
func (o *strObj) Call(method string, ret jvm.Return, args ...any) (any, error) {
	return nil, fmt.Errorf("jvmtest: String.%s not implemented", method)
}

type bufObj struct{ b []byte }

func (o *bufObj) Class() string { return "java/nio/ByteBuffer" }
func (o *bufObj) Release()      {}
func (o *bufObj) Call(method string, ret jvm.Return, args ...any) (any, error) {
	return nil, fmt.Errorf("jvmtest: ByteBuffer.%s not implemented", method)
}

// cfgObj 记录 setter 调用，供测试断言配置被逐项传递。
type cfgObj struct {
	class string
	props map[string]any
}

func (o *cfgObj) Class() string { return o.class }
func (o *cfgObj) Release()      {}
func (o *cfgObj) Call(method string, ret jvm.Return, args ...any) (any, error) {
	if !strings.HasPrefix(method, "set") {
		return nil, fmt.Errorf("jvmtest: %s.%s not implemented", o.class, method)
	}
	if len(args) == 1 {
		if s, ok := args[0].(*strObj); ok {
			o.props[method] = s.s
		} else {
			o.props[method] = args[0]
		}
	}
	return nil, nil
}

// resultObj 兼任 StringResult / ReaderResult / RecursiveResult。
type resultObj struct {
	status  byte
	errMsg  string
	content string
	md      map[string][]string
	reader  *readerObj
	mdList  []map[string][]string
}

func (o *resultObj) Class() string { return "ai/yobix/Result" }
func (o *resultObj) Release()      {}
func (o *resultObj) Call(method string, ret jvm.Return, args ...any) (any, error) {
	switch method {
	case "getStatus":
		return o.status, nil
	case "getErrorMessage":
		return o.errMsg, nil
	case "getContent":
		return o.content, nil
	case "getMetadata":
		if o.md == nil {
			return nil, nil
		}
		return &mdObj{md: o.md}, nil
	case "getReader":
		if o.reader == nil {
			return nil, nil
		}
		return o.reader, nil
	case "size":
		return len(o.mdList), nil
	case "getMetadataAt":
		i := args[0].(int)
		if i < 0 || i >= len(o.mdList) {
			return nil, fmt.Errorf("jvmtest: metadata index %d out of range", i)
		}
		return &mdObj{md: o.mdList[i]}, nil
	default:
		return nil, fmt.Errorf("jvmtest: Result.%s not implemented", method)
	}
}

type mdObj struct{ md map[string][]string }

func (o *mdObj) Class() string { return "org/apache/tika/metadata/Metadata" }
func (o *mdObj) Release()      {}
func (o *mdObj) Call(method string, ret jvm.Return, args ...any) (any, error) {
	switch method {
	case "names":
		names := make([]string, 0, len(o.md))
		for k := range o.md {
			names = append(names, k)
		}
		return names, nil
	case "getValues":
		name := args[0].(string)
		vals := o.md[name]
		return append([]string(nil), vals...), nil
	default:
		return nil, fmt.Errorf("jvmtest: Metadata.%s not implemented", method)
	}
}

// readerObj 是远程拉式读取器。readNBytes 语义与 java.io.InputStream 一致：
// 空返回仅表示流结束。
type readerObj struct {
	rt     *Runtime
	r      *bytes.Reader
	closed bool
}

func (o *readerObj) Class() string { return "org/apache/commons/io/input/ReaderInputStream" }
func (o *readerObj) Release()      {}
func (o *readerObj) Call(method string, ret jvm.Return, args ...any) (any, error) {
	switch method {
	case "readNBytes":
		if o.closed {
			return nil, fmt.Errorf("java.io.IOException: stream closed")
		}
		o.rt.mu.Lock()
		o.rt.reads++
		fail := o.rt.StreamFailAfter > 0 && o.rt.reads > o.rt.StreamFailAfter
		o.rt.mu.Unlock()
		if fail {
			return nil, fmt.Errorf("java.io.IOException: injected read failure")
		}
		n := args[0].(int)
		buf := make([]byte, n)
		read, err := io.ReadFull(o.r, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = nil
		}
		if err != nil {
			return nil, fmt.Errorf("java.io.IOException: %v", err)
		}
		return buf[:read], nil
	case "close":
		o.closed = true
		return nil, nil
	default:
		return nil, fmt.Errorf("jvmtest: Reader.%s not implemented", method)
	}
}
