// Package jvm 管理嵌入式 JVM 实例的生命周期，并提供跨运行时调用的最小抽象。
//
// 进程内只存在一个 JVM 实例：第一次 Attach 时惰性创建，之后所有线程共享。
// JVM 不支持可靠的重新初始化，因此实例在进程退出时被有意泄漏，从不销毁。
package jvm

import "errors"

var (
	// ErrStartup 表示嵌入式 JVM 初始化失败。该失败在进程内不可重试：
	// 首次失败会被记录，之后每次 Attach 都返回同一个错误。
	ErrStartup = errors.New("embedded JVM failed to start")

	// ErrAttach 表示当前线程无法注册到已启动的 JVM。
	ErrAttach = errors.New("could not attach current thread to the embedded JVM")
)

// Kind 声明一次远程调用的返回值形态。
type Kind int

const (
	// Void 无返回值
	Void Kind = iota
	// Bool Java boolean
	Bool
	// Byte Java byte
	Byte
	// Int Java int
	Int
	// String Java java.lang.String，null 映射为空字符串
	String
	// StringArray Java String[]，null 映射为空切片
	StringArray
	// Bytes Java byte[]，按值拷回本地
	Bytes
	// Object 远程对象引用，由 Return.Class 声明其类
	Object
)

// Return 是一次远程调用声明的返回签名。
// 操作标识由 (类名, 方法名, 参数表, Return) 共同构成，没有动态发现。
type Return struct {
	Kind  Kind
	Class string // Kind 为 Object 时的 JVM 内部类名，如 "ai/yobix/StringResult"
}

// Of 返回一个对象类型的返回签名。
func Of(class string) Return { return Return{Kind: Object, Class: class} }

// Obj 是嵌入式运行时内一个对象的不透明引用。
//
// 引用在显式 Release 之前跨线程有效。引用不做内部同步，
// 不能被多个线程同时使用。
//
// Call 的参数支持以下本地类型，由实现负责转换：
//   - bool → boolean
//   - int → int
//   - string → java.lang.String（调用结束后释放）
//   - []byte → byte[]（按值拷入）
//   - Obj → 对象引用
type Obj interface {
	// Call 调用实例方法。返回值的动态类型由 ret 决定：
	// Bool→bool, Byte→byte, Int→int, String→string,
	// StringArray→[]string, Bytes→[]byte, Object→Obj, Void→nil。
	Call(method string, ret Return, args ...any) (any, error)

	// Class 返回创建该引用时声明的类名。
	Class() string

	// Release 释放远程引用。释放后引用不可再使用；重复释放是空操作。
	Release()
}

// Env 是一个已注册线程的调用环境（线程附着句柄）。
// Env 只在取得它的调用内使用，不得跨调用保存。
type Env interface {
	// NewString 创建远程字符串对象。
	NewString(s string) (Obj, error)

	// NewDirectBuffer 基于调用方切片创建零拷贝的远程只读缓冲视图。
	// 调用方必须保证切片在本次远程调用期间有效且不被修改，
	// 该约束由文档约定，类型系统不做强制。
	NewDirectBuffer(buf []byte) (Obj, error)

	// NewObject 构造远程对象。
	NewObject(class string, args ...any) (Obj, error)

	// CallStatic 调用静态方法，返回值约定同 Obj.Call。
	CallStatic(class, method string, ret Return, args ...any) (any, error)
}

// Runtime 是嵌入式运行时会话。Attach 把调用线程注册到运行时并返回其 Env。
// 对已注册线程重复 Attach 是廉价的空操作。
type Runtime interface {
	Attach() (Env, error)
}
