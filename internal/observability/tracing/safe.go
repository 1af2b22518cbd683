package tracing

import (
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

var blockedAttributeKeys = []string{
	"personal_identity",
	"email",
	"phone",
	"address",
	"authorization",
}

// SafeAttributes drops attributes whose key may carry customer data.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if blocked(string(attr.Key)) {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// SafeError reduces err to its message, truncated, so wrapped driver errors
// do not leak bound values into span events.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return nil
	}
	const limit = 256
	if len(msg) > limit {
		msg = msg[:limit]
	}
	return errors.New(msg)
}

func blocked(key string) bool {
	key = strings.ToLower(key)
	for _, b := range blockedAttributeKeys {
		if strings.Contains(key, b) {
			return true
		}
	}
	return false
}
