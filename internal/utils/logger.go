package utils

import (
	"log"
	"strings"
)

// LogEvent writes one structured line tagged with module, action and the
// request id. Callers pass a short summary, never raw payloads.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}
