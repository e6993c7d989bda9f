package extractous

import (
	"errors"
	"fmt"

	"github.com/thc1102/extractous/internal/jvm"
)

// RuntimeStartupError 表示嵌入式运行时初始化失败。
// 该失败是致命且不可重试的：进程内之后的每次调用都会得到同一个错误。
type RuntimeStartupError struct {
	Err error
}

func (e *RuntimeStartupError) Error() string {
	return fmt.Sprintf("extractous: embedded runtime failed to start: %v", e.Err)
}

func (e *RuntimeStartupError) Unwrap() error { return e.Err }

// AttachError 表示调用线程无法注册到嵌入式运行时。
type AttachError struct {
	Err error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("extractous: could not attach thread to the embedded runtime: %v", e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }

// MarshalError 表示本地值无法转换为远程调用参数，
// 例如配置字段取了远程 API 不接受的枚举值。在发起远程调用之前失败。
type MarshalError struct {
	What string
	Err  error
}

func (e *MarshalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extractous: marshal %s: %v", e.What, e.Err)
	}
	return fmt.Sprintf("extractous: marshal %s", e.What)
}

func (e *MarshalError) Unwrap() error { return e.Err }

// RemoteError 表示远程引擎在解析中抛出异常或返回了错误状态。
// 消息（以及可得时的原始异常信息）以字符串形式保留用于诊断。
//
// Status 与 tika-native 的状态字节一致：0 表示通过异常路径失败，
// 1 表示 IO 错误，2 表示解析错误。
type RemoteError struct {
	Op      string
	Status  byte
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("extractous: %s: remote engine error (status %d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("extractous: %s: remote engine exception: %s", e.Op, e.Message)
}

// MalformedResultError 表示远程调用成功返回，但结果缺少结构上必需的部分，
// 例如递归结果的文档列表为空。
type MalformedResultError struct {
	Op   string
	What string
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("extractous: %s: malformed result: %s", e.Op, e.What)
}

// StreamIOError 表示对远程流句柄的一次读取在中途失败。
type StreamIOError struct {
	Err error
}

func (e *StreamIOError) Error() string {
	return fmt.Sprintf("extractous: stream read: %v", e.Err)
}

func (e *StreamIOError) Unwrap() error { return e.Err }

// wrapAttachErr 把运行时附着失败映射到公开错误类型。
func wrapAttachErr(err error) error {
	if errors.Is(err, jvm.ErrStartup) {
		return &RuntimeStartupError{Err: err}
	}
	return &AttachError{Err: err}
}
