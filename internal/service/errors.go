package service

import (
	"errors"
	"fmt"

	"catmatch/internal/repository"
)

// ErrorKind 是服務層錯誤的分類
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindForbidden
	KindConflict
	KindQuotaExceeded
	KindNotFound
)

// 穩定的錯誤代碼，客戶端依此顯示對應訊息
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeForbidden       = "FORBIDDEN"
	CodeAlreadyEvaluate = "ALREADY_EVALUATED"
	CodeQuotaExceeded   = "DAILY_SUPER_LIKE_LIMIT"
	CodeNotFound        = "NOT_FOUND"
	CodeNotInRoom       = "NOT_IN_ROOM"
	CodeInternal        = "INTERNAL"
)

type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func validationError(msg string) *Error {
	return newError(KindValidation, CodeValidation, msg)
}

func forbiddenError(msg string) *Error {
	return newError(KindForbidden, CodeForbidden, msg)
}

func notFoundError(msg string) *Error {
	return newError(KindNotFound, CodeNotFound, msg)
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal error", Err: err}
}

// wrapLookup 將 repository 的查詢錯誤轉成服務錯誤
func wrapLookup(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError(what + " not found")
	}
	return internalError(err)
}

// KindOf 回傳錯誤的分類，非服務錯誤一律視為 KindInternal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind 判斷錯誤是否屬於某一分類
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// CodeOf 回傳錯誤代碼
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// PublicMessage 回傳可以顯示給客戶端的訊息，內部錯誤不洩漏細節
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal error"
}
