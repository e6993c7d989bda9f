package extractous

import (
	"github.com/thc1102/extractous/internal/jvm"
)

// 远程操作标识是与 tika-native 约定死的 (类, 方法, 参数表, 返回类) 组合，
// 没有动态发现。任何形态之外的返回都按协议违例处理。
const (
	classTikaMain        = "ai/yobix/TikaNativeMain"
	classStringResult    = "ai/yobix/StringResult"
	classReaderResult    = "ai/yobix/ReaderResult"
	classRecursiveResult = "ai/yobix/RecursiveResult"
	classMetadata        = "org/apache/tika/metadata/Metadata"
	classPdfConfig       = "org/apache/tika/parser/pdf/PDFParserConfig"
	classOfficeConfig    = "org/apache/tika/parser/microsoft/OfficeParserConfig"
	classOcrConfig       = "org/apache/tika/parser/ocr/TesseractOCRConfig"
)

const (
	opParseFile           = "parseFile"
	opParseBytes          = "parseBytes"
	opParseURL            = "parseUrl"
	opParseFileToString   = "parseFileToString"
	opParseBytesToString  = "parseBytesToString"
	opParseURLToString    = "parseUrlToString"
	opParseFileRecursive  = "parseFileRecursive"
	opParseBytesRecursive = "parseBytesRecursive"
	opParseURLRecursive   = "parseUrlRecursive"
	opDetect              = "detect"
	opMemoryUsage         = "getMemoryUsage"
	opTriggerGC           = "triggerGarbageCollection"
)

type sourceKind int

const (
	srcPath sourceKind = iota
	srcBytes
	srcURL
)

// source 是数据源变体 {Path, Bytes, Url}。
type source struct {
	kind sourceKind
	str  string
	buf  []byte
}

func pathSource(p string) source  { return source{kind: srcPath, str: p} }
func urlSource(u string) source   { return source{kind: srcURL, str: u} }
func bytesSource(b []byte) source { return source{kind: srcBytes, buf: b} }

// marshal 把数据源转换为远程调用参数。字节源建立的是调用期共享的缓冲视图，
// 调用方切片在调用返回前必须保持有效且不被修改。
func (s source) marshal(env jvm.Env) (jvm.Obj, error) {
	switch s.kind {
	case srcBytes:
		obj, err := env.NewDirectBuffer(s.buf)
		if err != nil {
			return nil, &MarshalError{What: "byte buffer", Err: err}
		}
		return obj, nil
	default:
		obj, err := env.NewString(s.str)
		if err != nil {
			return nil, &MarshalError{What: "data source string", Err: err}
		}
		return obj, nil
	}
}

// attach 把当前线程注册到嵌入式运行时。重复附着是廉价的空操作。
func (e Extractor) attach() (jvm.Env, error) {
	rt := e.runtime
	if rt == nil {
		// 零值 Extractor 也能工作，等价于 NewExtractor 的运行时
		rt = jvm.Default()
	}
	env, err := rt.Attach()
	if err != nil {
		return nil, wrapAttachErr(err)
	}
	return env, nil
}

// parseToStream 发起流式提取：调用返回后元数据立即可用，
// 内容经由 StreamReader 惰性拉取。
func (e Extractor) parseToStream(op string, src source, req request) (*StreamReader, Metadata, error) {
	env, err := e.attach()
	if err != nil {
		return nil, nil, err
	}

	srcArg, err := src.marshal(env)
	if err != nil {
		return nil, nil, err
	}
	defer srcArg.Release()

	if !req.encoding.valid() {
		return nil, nil, &MarshalError{What: "charset " + req.encoding.String()}
	}
	charsetArg, err := env.NewString(req.encoding.String())
	if err != nil {
		return nil, nil, &MarshalError{What: "charset name", Err: err}
	}
	defer charsetArg.Release()

	pdf, office, ocr, release, err := marshalConfigs(env, req)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	res, err := env.CallStatic(classTikaMain, op, jvm.Of(classReaderResult),
		srcArg, charsetArg, pdf, office, ocr, req.xmlOutput, req.extractEmbedded)
	if err != nil {
		return nil, nil, &RemoteError{Op: op, Message: err.Error()}
	}
	obj, ok := res.(jvm.Obj)
	if !ok || obj == nil {
		return nil, nil, &MalformedResultError{Op: op, What: "missing result object"}
	}
	return unmarshalReaderResult(op, obj)
}

// parseToString 发起一次性字符串提取，长度截断在远程完成。
func (e Extractor) parseToString(op string, src source, req request) (string, Metadata, error) {
	env, err := e.attach()
	if err != nil {
		return "", nil, err
	}

	srcArg, err := src.marshal(env)
	if err != nil {
		return "", nil, err
	}
	defer srcArg.Release()

	pdf, office, ocr, release, err := marshalConfigs(env, req)
	if err != nil {
		return "", nil, err
	}
	defer release()

	res, err := env.CallStatic(classTikaMain, op, jvm.Of(classStringResult),
		srcArg, req.maxLength, pdf, office, ocr, req.xmlOutput, req.extractEmbedded)
	if err != nil {
		return "", nil, &RemoteError{Op: op, Message: err.Error()}
	}
	obj, ok := res.(jvm.Obj)
	if !ok || obj == nil {
		return "", nil, &MalformedResultError{Op: op, What: "missing result object"}
	}
	return unmarshalStringResult(op, obj)
}

// parseRecursive 发起递归提取。递归签名不带 extract_embedded 参数：
// 递归提取本身就是对嵌套文档的展开。
func (e Extractor) parseRecursive(op string, src source, req request) (*RecursiveExtraction, error) {
	env, err := e.attach()
	if err != nil {
		return nil, err
	}

	srcArg, err := src.marshal(env)
	if err != nil {
		return nil, err
	}
	defer srcArg.Release()

	pdf, office, ocr, release, err := marshalConfigs(env, req)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := env.CallStatic(classTikaMain, op, jvm.Of(classRecursiveResult),
		srcArg, req.maxLength, pdf, office, ocr, req.xmlOutput)
	if err != nil {
		return nil, &RemoteError{Op: op, Message: err.Error()}
	}
	obj, ok := res.(jvm.Obj)
	if !ok || obj == nil {
		return nil, &MalformedResultError{Op: op, What: "missing result object"}
	}
	return unmarshalRecursiveResult(op, obj)
}

func (e Extractor) detect(filePath string) (string, Metadata, error) {
	env, err := e.attach()
	if err != nil {
		return "", nil, err
	}
	srcArg, err := pathSource(filePath).marshal(env)
	if err != nil {
		return "", nil, err
	}
	defer srcArg.Release()

	res, err := env.CallStatic(classTikaMain, opDetect, jvm.Of(classStringResult), srcArg)
	if err != nil {
		return "", nil, &RemoteError{Op: opDetect, Message: err.Error()}
	}
	obj, ok := res.(jvm.Obj)
	if !ok || obj == nil {
		return "", nil, &MalformedResultError{Op: opDetect, What: "missing result object"}
	}
	return unmarshalStringResult(opDetect, obj)
}

// JVMMemoryUsage 查询嵌入式运行时的内存占用，返回 JSON 状态字符串。
// 诊断操作不经过任何提取配置。
func JVMMemoryUsage() (string, error) {
	return runtimeStatus(jvm.Default(), opMemoryUsage)
}

// TriggerJVMGC 请求嵌入式运行时执行一次垃圾回收，返回 JSON 状态字符串。
func TriggerJVMGC() (string, error) {
	return runtimeStatus(jvm.Default(), opTriggerGC)
}

func runtimeStatus(rt jvm.Runtime, op string) (string, error) {
	env, err := rt.Attach()
	if err != nil {
		return "", wrapAttachErr(err)
	}
	res, err := env.CallStatic(classTikaMain, op, jvm.Of(classStringResult))
	if err != nil {
		return "", &RemoteError{Op: op, Message: err.Error()}
	}
	obj, ok := res.(jvm.Obj)
	if !ok || obj == nil {
		return "", &MalformedResultError{Op: op, What: "missing result object"}
	}
	content, _, err := unmarshalStringResult(op, obj)
	return content, err
}
