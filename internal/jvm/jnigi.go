package jvm

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"tekao.net/jnigi"
)

// 环境变量：覆盖 JVM 动态库路径与 tika-native 的类路径。
// 类路径在构建期固定打包，这两个变量只用于部署时重定位。
const (
	envJVMLib    = "EXTRACTOUS_JVM_LIB"
	envClasspath = "EXTRACTOUS_CLASSPATH"
)

var (
	vmOnce sync.Once
	vm     *jnigi.JVM
	vmErr  error
)

type defaultRuntime struct{}

// Default 返回进程级共享的 JVM 会话。
// 不会立即启动 JVM：首次 Attach 时才惰性创建，且保证只创建一次。
func Default() Runtime { return defaultRuntime{} }

// initVM 创建共享 JVM。并发的首次 Attach 由 sync.Once 串行化，
// 晚到的线程阻塞等待而不是自旋。
func initVM() {
	libPath := os.Getenv(envJVMLib)
	if libPath == "" {
		libPath = jnigi.AttemptToFindJVMLibPath()
	}
	if err := jnigi.LoadJVMLib(libPath); err != nil {
		vmErr = fmt.Errorf("load jvm library %q: %w", libPath, err)
		return
	}

	opts := []string{"-Djava.awt.headless=true"}
	if cp := os.Getenv(envClasspath); cp != "" {
		opts = append(opts, "-Djava.class.path="+cp)
	}

	created, env, err := jnigi.CreateJVM(jnigi.NewJVMInitArgs(false, true, jnigi.DEFAULT_VERSION, opts))
	if err != nil {
		vmErr = fmt.Errorf("create jvm: %w", err)
		return
	}
	env.ExceptionHandler = jnigi.ThrowableToStringExceptionHandler
	vm = created
}

func (defaultRuntime) Attach() (Env, error) {
	vmOnce.Do(initVM)
	if vmErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrStartup, vmErr)
	}
	env := vm.AttachCurrentThread()
	if env == nil {
		return nil, ErrAttach
	}
	env.ExceptionHandler = jnigi.ThrowableToStringExceptionHandler
	return &jniEnv{env: env}, nil
}

// attachEnv 为当前线程取一个 Env。对象方法可能在任意调用方线程上执行
// （典型的是流读取），重复附着是空操作，代价可以接受。
func attachEnv() (*jnigi.Env, error) {
	env := vm.AttachCurrentThread()
	if env == nil {
		return nil, ErrAttach
	}
	env.ExceptionHandler = jnigi.ThrowableToStringExceptionHandler
	return env, nil
}

type jniEnv struct {
	env *jnigi.Env
}

func (e *jniEnv) NewString(s string) (Obj, error) {
	ref, err := newJavaString(e.env, s)
	if err != nil {
		return nil, err
	}
	return pin(e.env, ref, "java/lang/String"), nil
}

// NewDirectBuffer 通过 ByteBuffer.wrap 建立远程缓冲。jnigi 的调用约定
// 以值拷贝传递 []byte，因此这里是一次拷入而非指针共享；
// 调用方切片在调用期间保持有效且不被修改的约束不变。
func (e *jniEnv) NewDirectBuffer(buf []byte) (Obj, error) {
	dest := jnigi.NewObjectRef("java/nio/ByteBuffer")
	if err := e.env.CallStaticMethod("java/nio/ByteBuffer", "wrap", dest, buf); err != nil {
		return nil, fmt.Errorf("wrap byte buffer: %w", err)
	}
	return pin(e.env, dest, "java/nio/ByteBuffer"), nil
}

func (e *jniEnv) NewObject(class string, args ...any) (Obj, error) {
	jargs, release, err := toJavaArgs(e.env, args)
	if err != nil {
		return nil, err
	}
	defer release()
	ref, err := e.env.NewObject(class, jargs...)
	if err != nil {
		return nil, fmt.Errorf("new %s: %w", class, err)
	}
	return pin(e.env, ref, class), nil
}

func (e *jniEnv) CallStatic(class, method string, ret Return, args ...any) (any, error) {
	jargs, release, err := toJavaArgs(e.env, args)
	if err != nil {
		return nil, err
	}
	defer release()

	dest, out := newDest(ret)
	if err := e.env.CallStaticMethod(class, method, dest, jargs...); err != nil {
		return nil, err
	}
	return out(e.env, ret)
}

// jniObj 持有一个全局引用，因此跨线程、跨本地帧都有效，直到 Release。
type jniObj struct {
	mu    sync.Mutex
	ref   *jnigi.ObjectRef
	class string
}

// pin 把本地引用升级为全局引用并释放本地引用。
func pin(env *jnigi.Env, ref *jnigi.ObjectRef, class string) Obj {
	global := env.NewGlobalRef(ref)
	env.DeleteLocalRef(ref)
	return &jniObj{ref: global, class: class}
}

func (o *jniObj) Class() string { return o.class }

func (o *jniObj) Call(method string, ret Return, args ...any) (any, error) {
	if o.ref == nil {
		return nil, fmt.Errorf("call %s.%s: reference already released", o.class, method)
	}
	env, err := attachEnv()
	if err != nil {
		return nil, err
	}
	jargs, release, err := toJavaArgs(env, args)
	if err != nil {
		return nil, err
	}
	defer release()

	dest, out := newDest(ret)
	if err := o.ref.CallMethod(env, method, dest, jargs...); err != nil {
		return nil, err
	}
	return out(env, ret)
}

func (o *jniObj) Release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ref == nil {
		return
	}
	if env, err := attachEnv(); err == nil {
		env.DeleteGlobalRef(o.ref)
	}
	o.ref = nil
}

// toJavaArgs 把本地参数转换为 jnigi 可接受的形式。
// 为 string 参数临时创建的 java.lang.String 在调用结束后统一释放。
func toJavaArgs(env *jnigi.Env, args []any) ([]any, func(), error) {
	jargs := make([]any, 0, len(args))
	var temp []*jnigi.ObjectRef
	release := func() {
		for _, r := range temp {
			env.DeleteLocalRef(r)
		}
	}

	for _, a := range args {
		switch v := a.(type) {
		case bool, int, byte, []byte:
			jargs = append(jargs, v)
		case string:
			ref, err := newJavaString(env, v)
			if err != nil {
				release()
				return nil, nil, err
			}
			temp = append(temp, ref)
			jargs = append(jargs, ref)
		case *jniObj:
			jargs = append(jargs, v.ref)
		default:
			release()
			return nil, nil, fmt.Errorf("unsupported argument type %T", a)
		}
	}
	return jargs, release, nil
}

// newJavaString 构造 java.lang.String。依赖 JVM 默认字符集为 UTF-8
// （JEP 400，Java 18 起为规范默认，tika-native 构建固定在其之上）。
func newJavaString(env *jnigi.Env, s string) (*jnigi.ObjectRef, error) {
	ref, err := env.NewObject("java/lang/String", []byte(s))
	if err != nil {
		return nil, fmt.Errorf("new java string: %w", err)
	}
	return ref, nil
}

// newDest 按声明的返回签名构造 jnigi 的接收目标，
// 以及把接收到的值转换为本抽象约定形态的函数。
func newDest(ret Return) (any, func(*jnigi.Env, Return) (any, error)) {
	switch ret.Kind {
	case Void:
		return nil, func(*jnigi.Env, Return) (any, error) { return nil, nil }
	case Bool:
		v := new(bool)
		return v, func(*jnigi.Env, Return) (any, error) { return *v, nil }
	case Byte:
		v := new(byte)
		return v, func(*jnigi.Env, Return) (any, error) { return *v, nil }
	case Int:
		v := new(int)
		return v, func(*jnigi.Env, Return) (any, error) { return *v, nil }
	case Bytes:
		v := new([]byte)
		return v, func(*jnigi.Env, Return) (any, error) { return *v, nil }
	case String:
		dest := jnigi.NewObjectRef("java/lang/String")
		return dest, func(env *jnigi.Env, _ Return) (any, error) {
			defer env.DeleteLocalRef(dest)
			return goString(env, dest)
		}
	case StringArray:
		dest := jnigi.NewObjectArrayRef("java/lang/String")
		return dest, func(env *jnigi.Env, _ Return) (any, error) {
			defer env.DeleteLocalRef(dest)
			if dest.IsNil() {
				return []string{}, nil
			}
			refs := env.FromObjectArray(dest)
			out := make([]string, 0, len(refs))
			for _, r := range refs {
				s, err := goString(env, r)
				if err != nil {
					return nil, err
				}
				env.DeleteLocalRef(r)
				out = append(out, s)
			}
			return out, nil
		}
	case Object:
		dest := jnigi.NewObjectRef(ret.Class)
		return dest, func(env *jnigi.Env, ret Return) (any, error) {
			if dest.IsNil() {
				return nil, nil
			}
			return pin(env, dest, ret.Class), nil
		}
	default:
		return nil, func(*jnigi.Env, Return) (any, error) {
			return nil, fmt.Errorf("unknown return kind %d", ret.Kind)
		}
	}
}

// goString 把 java.lang.String 引用转换为本地字符串，null 映射为空串。
func goString(env *jnigi.Env, ref *jnigi.ObjectRef) (string, error) {
	if ref.IsNil() {
		return "", nil
	}
	var raw []byte
	if err := ref.CallMethod(env, "getBytes", &raw); err != nil {
		return "", fmt.Errorf("string getBytes: %w", err)
	}
	return strings.ToValidUTF8(string(raw), "�"), nil
}
