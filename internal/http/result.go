package httpapi

// Result 管理接口（草稿、模板、菜单表格）统一响应信封
// - code: 2000 成功，-1 失败
// - type: 'success' | 'error'
// 公共契约接口（地址校验、发布、租户读取）使用各自定义的响应结构
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}
