package utils

import (
	"log"
	"strings"
)

// LogEvent writes one line per domain event, keyed by module and action so
// lines grep cleanly. Pass a short summary, never a raw payload.
func LogEvent(requestID, module, action, message string) {
	log.Printf("[%s] action=%s request_id=%s msg=%s",
		strings.ToUpper(strings.TrimSpace(module)), action, strings.TrimSpace(requestID), message)
}
