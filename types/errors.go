package types

import (
	"errors"
	"fmt"
)

// ErrorCode 运行错误代码,任一致命错误都会终止后续处理
type ErrorCode int

const (
	ErrNone               ErrorCode = iota
	ErrMemory                       // 保留,当前不返回;占位使其后的代码编号保持不变
	ErrInput                        // 输入数据错误
	ErrConfig                       // 配置冲突
	ErrRoutingFileOpen              // 接口文件无法打开
	ErrRoutingFileFormat            // 接口文件格式错误
	ErrRoutingFileNoMatch           // 接口文件单位与项目不一致
	ErrRoutingFileNames             // 入流与出流接口文件相同
	ErrSystem                       // 运行中数值或系统错误
)

var errorCodeText = map[ErrorCode]string{
	ErrNone:               "no error",
	ErrMemory:             "out of memory",
	ErrInput:              "invalid input data",
	ErrConfig:             "conflicting configuration",
	ErrRoutingFileOpen:    "cannot open routing interface file",
	ErrRoutingFileFormat:  "invalid format for routing interface file",
	ErrRoutingFileNoMatch: "inconsistent units in routing interface file",
	ErrRoutingFileNames:   "inflow and outflow interface files have same name",
	ErrSystem:             "system error",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeText[c]; ok {
		return s
	}
	return fmt.Sprintf("error %d", int(c))
}

// Error 带错误代码的致命错误
type Error struct {
	Code ErrorCode // 错误代码
	File string    // 相关文件
	Line int       // 行号,0 表示无
	Msg  string    // 附加信息
	Err  error     // 底层错误
}

// NewError 创建错误
func NewError(code ErrorCode, file string, line int, msg string) *Error {
	return &Error{Code: code, File: file, Line: line, Msg: msg}
}

// WrapError 包装底层错误
func WrapError(code ErrorCode, file string, err error) *Error {
	return &Error{Code: code, File: file, Err: err}
}

func (e *Error) Error() string {
	s := "ERROR " + fmt.Sprint(int(e.Code)) + ": " + e.Code.String()
	if e.File != "" {
		s += " " + e.File
	}
	if e.Line > 0 {
		s += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is 按错误代码比较
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// CodeOf 取错误代码,非 *Error 返回 ErrSystem
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrSystem
}
