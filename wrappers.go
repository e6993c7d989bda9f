package extractous

import (
	"github.com/thc1102/extractous/internal/jvm"
)

// recursiveContentKey 是 RecursiveParserWrapperHandler 存放每个文档正文的
// 元数据键。解包时把它从元数据提升为 Document.Content。
const recursiveContentKey = "X-TIKA:content"

var void = jvm.Return{Kind: jvm.Void}

// marshalConfigs 把三个解析配置转换为远程结构化对象，字段逐项填充。
// 返回的 release 统一释放这些调用期对象。
func marshalConfigs(env jvm.Env, req request) (pdf, office, ocr jvm.Obj, release func(), err error) {
	var created []jvm.Obj
	release = func() {
		for _, o := range created {
			o.Release()
		}
	}
	fail := func(err error) (jvm.Obj, jvm.Obj, jvm.Obj, func(), error) {
		release()
		return nil, nil, nil, func() {}, err
	}

	pdf, err = marshalPdfConfig(env, req.pdfConfig)
	if err != nil {
		return fail(err)
	}
	created = append(created, pdf)

	office, err = marshalOfficeConfig(env, req.officeConfig)
	if err != nil {
		return fail(err)
	}
	created = append(created, office)

	ocr, err = marshalOcrConfig(env, req.ocrConfig)
	if err != nil {
		return fail(err)
	}
	created = append(created, ocr)

	return pdf, office, ocr, release, nil
}

func marshalPdfConfig(env jvm.Env, c PdfParserConfig) (jvm.Obj, error) {
	// 枚举取值能静态校验的在本地先行拒绝，其余交给远程侧
	if !c.ocrStrategy.valid() {
		return nil, &MarshalError{What: "pdf ocr strategy " + string(c.ocrStrategy)}
	}
	obj, err := env.NewObject(classPdfConfig)
	if err != nil {
		return nil, &MarshalError{What: "PDFParserConfig", Err: err}
	}
	setters := []struct {
		name string
		arg  any
	}{
		{"setOcrStrategy", string(c.ocrStrategy)},
		{"setExtractInlineImages", c.extractInlineImages},
		{"setExtractUniqueInlineImagesOnly", c.extractUniqueInlineImagesOnly},
		{"setExtractMarkedContent", c.extractMarkedContent},
		{"setExtractAnnotationText", c.extractAnnotationText},
	}
	for _, s := range setters {
		if _, err := obj.Call(s.name, void, s.arg); err != nil {
			obj.Release()
			return nil, &MarshalError{What: "PDFParserConfig." + s.name, Err: err}
		}
	}
	return obj, nil
}

func marshalOfficeConfig(env jvm.Env, c OfficeParserConfig) (jvm.Obj, error) {
	obj, err := env.NewObject(classOfficeConfig)
	if err != nil {
		return nil, &MarshalError{What: "OfficeParserConfig", Err: err}
	}
	setters := []struct {
		name string
		arg  any
	}{
		{"setExtractMacros", c.extractMacros},
		{"setIncludeDeletedContent", c.includeDeletedContent},
		{"setIncludeMoveFromContent", c.includeMoveFromContent},
		{"setIncludeShapeBasedContent", c.includeShapeBasedContent},
		{"setIncludeHeadersAndFooters", c.includeHeadersAndFooters},
		{"setConcatenatePhoneticRuns", c.concatenatePhoneticRuns},
		{"setExtractAllAlternativesFromMSG", c.extractAllAlternativesFromMSG},
	}
	for _, s := range setters {
		if _, err := obj.Call(s.name, void, s.arg); err != nil {
			obj.Release()
			return nil, &MarshalError{What: "OfficeParserConfig." + s.name, Err: err}
		}
	}
	return obj, nil
}

func marshalOcrConfig(env jvm.Env, c TesseractOcrConfig) (jvm.Obj, error) {
	obj, err := env.NewObject(classOcrConfig)
	if err != nil {
		return nil, &MarshalError{What: "TesseractOCRConfig", Err: err}
	}
	setters := []struct {
		name string
		arg  any
	}{
		{"setDensity", c.density},
		{"setDepth", c.depth},
		{"setTimeoutSeconds", c.timeoutSeconds},
		{"setEnableImagePreprocessing", c.enableImagePreprocessing},
		{"setApplyRotation", c.applyRotation},
		{"setLanguage", c.language},
	}
	for _, s := range setters {
		if _, err := obj.Call(s.name, void, s.arg); err != nil {
			obj.Release()
			return nil, &MarshalError{What: "TesseractOCRConfig." + s.name, Err: err}
		}
	}
	return obj, nil
}

// checkStatus 读取结果对象的状态字节，非零时转换为 RemoteError。
func checkStatus(op string, obj jvm.Obj) error {
	status, err := obj.Call("getStatus", jvm.Return{Kind: jvm.Byte})
	if err != nil {
		return &MalformedResultError{Op: op, What: "status: " + err.Error()}
	}
	st := status.(byte)
	if st == 0 {
		return nil
	}
	msg, err := obj.Call("getErrorMessage", jvm.Return{Kind: jvm.String})
	if err != nil {
		return &MalformedResultError{Op: op, What: "error message: " + err.Error()}
	}
	return &RemoteError{Op: op, Status: st, Message: msg.(string)}
}

// unmarshalStringResult 把 StringResult 拆为 (内容, 元数据)。
// 除嵌入在 StreamReader 里的读取器句柄外，任何远程引用都不越过解包调用存活。
func unmarshalStringResult(op string, obj jvm.Obj) (string, Metadata, error) {
	defer obj.Release()

	if err := checkStatus(op, obj); err != nil {
		return "", nil, err
	}
	content, err := obj.Call("getContent", jvm.Return{Kind: jvm.String})
	if err != nil {
		return "", nil, &MalformedResultError{Op: op, What: "content: " + err.Error()}
	}
	md, err := unmarshalResultMetadata(op, obj)
	if err != nil {
		return "", nil, err
	}
	return content.(string), md, nil
}

// unmarshalReaderResult 把 ReaderResult 拆为 (流读取器, 元数据)。
// 读取器句柄立刻被包进 StreamReader，元数据在内容被消费之前即可用。
func unmarshalReaderResult(op string, obj jvm.Obj) (*StreamReader, Metadata, error) {
	defer obj.Release()

	if err := checkStatus(op, obj); err != nil {
		return nil, nil, err
	}
	reader, err := obj.Call("getReader", jvm.Of("org/apache/commons/io/input/ReaderInputStream"))
	if err != nil {
		return nil, nil, &MalformedResultError{Op: op, What: "reader: " + err.Error()}
	}
	readerObj, ok := reader.(jvm.Obj)
	if !ok || readerObj == nil {
		return nil, nil, &MalformedResultError{Op: op, What: "missing reader handle"}
	}
	md, err := unmarshalResultMetadata(op, obj)
	if err != nil {
		readerObj.Release()
		return nil, nil, err
	}
	return newStreamReader(readerObj), md, nil
}

// unmarshalRecursiveResult 把 RecursiveResult 拆为文档列表。
// 列表第 0 项是容器文档；空列表按协议违例处理，而不是“无内容”。
func unmarshalRecursiveResult(op string, obj jvm.Obj) (*RecursiveExtraction, error) {
	defer obj.Release()

	if err := checkStatus(op, obj); err != nil {
		return nil, err
	}
	size, err := obj.Call("size", jvm.Return{Kind: jvm.Int})
	if err != nil {
		return nil, &MalformedResultError{Op: op, What: "document count: " + err.Error()}
	}
	n := size.(int)
	if n < 1 {
		return nil, &MalformedResultError{Op: op, What: "empty document list"}
	}

	docs := make([]Document, 0, n)
	for i := 0; i < n; i++ {
		mdRes, err := obj.Call("getMetadataAt", jvm.Of(classMetadata), i)
		if err != nil {
			return nil, &MalformedResultError{Op: op, What: "metadata list: " + err.Error()}
		}
		mdObj, ok := mdRes.(jvm.Obj)
		if !ok || mdObj == nil {
			return nil, &MalformedResultError{Op: op, What: "missing metadata entry"}
		}
		md, err := unmarshalMetadata(op, mdObj)
		if err != nil {
			return nil, err
		}
		// 正文由 RecursiveParserWrapperHandler 放在元数据里，提升为字段
		var content string
		if vals := md[recursiveContentKey]; len(vals) > 0 {
			content = vals[0]
			delete(md, recursiveContentKey)
		}
		docs = append(docs, Document{Content: content, Metadata: md})
	}
	return &RecursiveExtraction{Documents: docs}, nil
}

func unmarshalResultMetadata(op string, obj jvm.Obj) (Metadata, error) {
	mdRes, err := obj.Call("getMetadata", jvm.Of(classMetadata))
	if err != nil {
		return nil, &MalformedResultError{Op: op, What: "metadata: " + err.Error()}
	}
	mdObj, ok := mdRes.(jvm.Obj)
	if !ok || mdObj == nil {
		return nil, &MalformedResultError{Op: op, What: "missing metadata"}
	}
	return unmarshalMetadata(op, mdObj)
}

// unmarshalMetadata 把远程 Metadata 对象转换为本地映射。
// 遍历 names() 再逐键取 getValues()，全部值按本地所有权拷回。
func unmarshalMetadata(op string, obj jvm.Obj) (Metadata, error) {
	defer obj.Release()

	namesRes, err := obj.Call("names", jvm.Return{Kind: jvm.StringArray})
	if err != nil {
		return nil, &MalformedResultError{Op: op, What: "metadata names: " + err.Error()}
	}
	names := namesRes.([]string)

	md := make(Metadata, len(names))
	for _, name := range names {
		valsRes, err := obj.Call("getValues", jvm.Return{Kind: jvm.StringArray}, name)
		if err != nil {
			return nil, &MalformedResultError{Op: op, What: "metadata values: " + err.Error()}
		}
		md[name] = valsRes.([]string)
	}
	return md, nil
}
