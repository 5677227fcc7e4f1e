// Package wxerr 定义企业微信机器人调用链路上的错误分类。
package wxerr

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind string

const (
	// KindValidation 本地约束校验失败（长度、必填字段、枚举值），不会发起任何网络请求
	KindValidation Kind = "validation"
	// KindNotFound 本地文件不存在
	KindNotFound Kind = "not_found"
	// KindTransport 超时、连接失败、非 200 且无法解析的响应
	KindTransport Kind = "transport"
	// KindRemote 企业微信返回了非 0 的 errcode
	KindRemote Kind = "remote"
	// KindProtocol 响应无法解析为 JSON，或缺少约定字段
	KindProtocol Kind = "protocol"
	// KindConfig 启动期配置错误
	KindConfig Kind = "config"
)

// Error 带类别的错误，可以直接透出给调用方
type Error struct {
	Kind    Kind
	Message string
	// Code 远端 errcode，仅 KindRemote 有效
	Code int
	// Status HTTP 状态码，传输层错误时可能有值
	Status int
	// Body 远端原始响应体（截断后）
	Body    string
	Timeout bool
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	switch {
	case e.Kind == KindRemote:
		msg = fmt.Sprintf("%s (errcode=%d)", msg, e.Code)
	case e.Status != 0:
		msg = fmt.Sprintf("%s (status=%d, body=%s)", msg, e.Status, e.Body)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation 构造本地校验错误
func Validation(format string, a ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, a...)}
}

// NotFound 构造文件不存在错误
func NotFound(format string, a ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, a...)}
}

// Transport 构造传输层错误，err 为底层错误，可为 nil
func Transport(err error, format string, a ...any) *Error {
	return &Error{Kind: KindTransport, Message: fmt.Sprintf(format, a...), Err: err}
}

// Remote 构造远端业务错误
func Remote(code int, msg string) *Error {
	return &Error{Kind: KindRemote, Message: msg, Code: code}
}

// Protocol 构造协议错误
func Protocol(err error, format string, a ...any) *Error {
	return &Error{Kind: KindProtocol, Message: fmt.Sprintf(format, a...), Err: err}
}

// Config 构造配置错误
func Config(format string, a ...any) *Error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(format, a...)}
}

// WithStatus 附带 HTTP 状态码与响应体
func (e *Error) WithStatus(status int, body string) *Error {
	e.Status = status
	e.Body = truncate(body, maxBodyLen)
	return e
}

// WithTimeout 标记为超时
func (e *Error) WithTimeout() *Error {
	e.Timeout = true
	return e
}

const maxBodyLen = 512

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// KindOf 返回错误链上第一个 *Error 的类别，非本包错误返回空串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is 判断错误链上是否存在指定类别的 *Error
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsTimeout 判断是否为超时导致的传输错误
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Timeout
}
