package rentals

import (
	"errors"
	"fmt"
)

// ===== Error model (assets/patrons と同型) =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeItemAlreadyRent Code = "ITEM_ALREADY_RENT" // 対象の現物が貸出中
	CodeTxConflict      Code = "TX_CONFLICT"       // デッドロック等。リトライ可
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func ErrItemAlreadyRent() *APIError {
	return &APIError{Code: CodeItemAlreadyRent, Message: "inventory item is already rent"}
}

// ErrTxConflict: チェックと書き込みのトランザクションが競合で完了しなかった。
// 呼び出し側は最初から（open rentals の再読込から）リトライしてよい。
func ErrTxConflict() *APIError {
	return &APIError{Code: CodeTxConflict, Message: "transaction conflict, retry the request"}
}

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict, CodeItemAlreadyRent:
			return 409
		case CodeTxConflict:
			return 503
		default:
			return 500
		}
	}
	return 500
}
