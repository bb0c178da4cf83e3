// Package errors 为触觉反馈客户端提供错误分类
//
// 客户端内部的任何错误都不会以 panic 的形式抛给调用方。错误按处理方式分为
// 参数校验、资源缺失、连接不可用、消息解析四类，调用方通过 Is* 判断类别。
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass 错误类别
type ErrorClass int

const (
	// ErrorInvalid 参数越界、空 key 等校验错误，请求在发送前被拒绝
	ErrorInvalid ErrorClass = iota
	// ErrorMissing 图案文件不存在等资源缺失错误
	ErrorMissing
	// ErrorTransient 连接不可用或已断开，等待下一次重连
	ErrorTransient
	// ErrorParse 入站消息格式错误，保留上一次的状态
	ErrorParse
	// ErrorFatal 配置错误等无法继续的错误，仅出现在进程启动阶段
	ErrorFatal
)

func (ec ErrorClass) String() string {
	switch ec {
	case ErrorInvalid:
		return "invalid"
	case ErrorMissing:
		return "missing"
	case ErrorTransient:
		return "transient"
	case ErrorParse:
		return "parse"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyKey        = errors.New("empty feedback key")
	ErrOutOfRange      = errors.New("value out of range")
	ErrUnknownPosition = errors.New("unknown device position")
	ErrPatternNotFound = errors.New("pattern file not found")
	ErrUnknownFamily   = errors.New("unknown pattern family")
	ErrNoConnection    = errors.New("no connection available")
	ErrConnectionLost  = errors.New("connection lost")
	ErrParsingFailed   = errors.New("parsing failed")
	ErrNotInitialised  = errors.New("player not initialised")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// ClassifiedError 带类别和上下文的错误
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Component string
	Operation string
}

func (ce *ClassifiedError) Error() string {
	return fmt.Sprintf("%s.%s: %v", ce.Component, ce.Operation, ce.Err)
}

func (ce *ClassifiedError) Unwrap() error { return ce.Err }

func wrap(class ErrorClass, err error, component, operation string) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Class: class, Err: err, Component: component, Operation: operation}
}

// WrapInvalid 包装为校验错误
func WrapInvalid(err error, component, operation string) error {
	return wrap(ErrorInvalid, err, component, operation)
}

// WrapMissing 包装为资源缺失错误
func WrapMissing(err error, component, operation string) error {
	return wrap(ErrorMissing, err, component, operation)
}

// WrapTransient 包装为连接类错误
func WrapTransient(err error, component, operation string) error {
	return wrap(ErrorTransient, err, component, operation)
}

// WrapParse 包装为解析错误
func WrapParse(err error, component, operation string) error {
	return wrap(ErrorParse, err, component, operation)
}

// WrapFatal 包装为致命错误
func WrapFatal(err error, component, operation string) error {
	return wrap(ErrorFatal, err, component, operation)
}

// Classify 返回错误的类别，未分类的错误按哨兵错误推断，默认视为连接类错误
func Classify(err error) ErrorClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}

	switch {
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrOutOfRange), errors.Is(err, ErrUnknownPosition):
		return ErrorInvalid
	case errors.Is(err, ErrPatternNotFound), errors.Is(err, ErrUnknownFamily):
		return ErrorMissing
	case errors.Is(err, ErrParsingFailed):
		return ErrorParse
	case errors.Is(err, ErrInvalidConfig):
		return ErrorFatal
	default:
		return ErrorTransient
	}
}

func IsInvalid(err error) bool   { return err != nil && Classify(err) == ErrorInvalid }
func IsMissing(err error) bool   { return err != nil && Classify(err) == ErrorMissing }
func IsTransient(err error) bool { return err != nil && Classify(err) == ErrorTransient }
func IsParse(err error) bool     { return err != nil && Classify(err) == ErrorParse }
func IsFatal(err error) bool     { return err != nil && Classify(err) == ErrorFatal }

// Is 与 As 透传标准库，避免调用方同时导入两个 errors 包
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func New(text string) error { return errors.New(text) }
