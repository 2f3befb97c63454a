package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GoogleErrors formats the {"error":{"code","message"}} body Google APIs
// return, falling back to the raw body.
func GoogleErrors(name string) ErrorFormatter {
	return func(status int, body []byte) string {
		var e struct {
			Error json.RawMessage `json:"error"`
		}
		msg := ""
		if json.Unmarshal(body, &e) == nil && len(e.Error) > 0 {
			var detail struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(e.Error, &detail) == nil {
				msg = detail.Message
			} else {
				_ = json.Unmarshal(e.Error, &msg)
			}
		}
		if msg == "" {
			msg = Truncate(strings.TrimSpace(string(body)), maxErrorBody)
		}
		return fmt.Sprintf("%s API error: %d - %s", name, status, msg)
	}
}
