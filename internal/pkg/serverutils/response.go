package serverutils

type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

// ErrorBody is the error shape the chat frontend reads: {"detail": "..."}.
type ErrorBody struct {
	Code   int    `json:"-"`
	Detail string `json:"detail"`
}

func ErrorResponse(code int, message string) ErrorBody {
	return ErrorBody{
		Code:   code,
		Detail: message,
	}
}
