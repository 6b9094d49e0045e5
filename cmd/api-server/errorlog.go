package main

import (
	"log"
	"log/slog"
	"strings"

	"afro-class/pkg/logging"
)

// serverErrorFilter 丢弃客户端提前断开产生的噪音日志，其余转发到结构化日志
type serverErrorFilter struct {
	next *log.Logger
}

func (f *serverErrorFilter) Write(p []byte) (n int, err error) {
	msg := string(p)
	if strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer") {
		return len(p), nil
	}
	f.next.Print(strings.TrimRight(msg, "\n"))
	return len(p), nil
}

// newServerErrorLog 创建 http.Server.ErrorLog
func newServerErrorLog(logger *logging.Logger) *log.Logger {
	return log.New(&serverErrorFilter{next: logger.StdLogger(slog.LevelError)}, "", 0)
}
