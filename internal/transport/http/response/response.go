package response

import "github.com/gin-gonic/gin"

// New builds the {status, msg, ...payload} envelope. status and msg always
// win over payload keys of the same name.
func New(ok bool, msg string, payload gin.H) gin.H {
	body := make(gin.H, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["status"] = ok
	body["msg"] = msg
	return body
}

func OK(msg string, payload gin.H) gin.H { return New(true, msg, payload) }

// Error uses the default message for code when customMsg is empty.
func Error(code int, customMsg string) gin.H {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(false, msg, nil)
}

// Abort writes an error envelope with code as the HTTP status.
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Error(code, msg))
}
