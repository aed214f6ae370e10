// Package log — тонкая обертка над стандартным log, которая отбрасывает
// сообщения с префиксом [DEBUG], если отладка не включена.
package log

import (
	"fmt"
	"log"
	"strings"
)

const debugPrefix = "[DEBUG]"

var AllowDebug = false

func Printf(format string, v ...any) {
	if !allowed(format) {
		return
	}
	log.Printf(format, v...)
}

func Fatalf(format string, v ...any) {
	if !allowed(format) {
		return
	}
	log.Fatalf(format, v...)
}

func allowed(s string) bool {
	if AllowDebug {
		return true
	}
	return !strings.HasPrefix(s, debugPrefix)
}

// AccessLog пишет журнал HTTP-запросов через стандартный log с уровнем [INFO].
// Реализует middleware.LoggerInterface из chi.
type AccessLog struct{}

func (AccessLog) Print(v ...any) {
	log.Print("[INFO] access: " + fmt.Sprint(v...))
}
