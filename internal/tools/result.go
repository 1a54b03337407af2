// Package tools declares the callable tools the agent may invoke and
// executes them against persistent state with per-user authorization.
package tools

// ErrorCode classifies tool failures. Failures are data, not Go errors:
// they are serialized back to the model so it can explain them to the user.
type ErrorCode string

const (
	ErrValidation    ErrorCode = "validation_error"
	ErrNotFound      ErrorCode = "not_found"
	ErrInvalidTool   ErrorCode = "invalid_tool"
	ErrToolExecution ErrorCode = "tool_execution_error"
	ErrInternal      ErrorCode = "internal_error"
)

// Result is the structured envelope every tool execution returns. It is
// always one of:
//
//	{"success": true, ...data}
//	{"success": false, "error": <code>, "message": <detail>}
type Result map[string]any

// OK reports whether the result is a success envelope.
func (r Result) OK() bool {
	ok, _ := r["success"].(bool)
	return ok
}

// ErrorCode returns the failure code, or "" for success envelopes.
func (r Result) ErrorCode() ErrorCode {
	code, _ := r["error"].(ErrorCode)
	if code == "" {
		if s, ok := r["error"].(string); ok {
			code = ErrorCode(s)
		}
	}
	return code
}

func success(fields map[string]any) Result {
	r := Result{"success": true}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func failure(code ErrorCode, message string) Result {
	return Result{
		"success": false,
		"error":   string(code),
		"message": message,
	}
}
