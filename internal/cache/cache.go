package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a process local key value store. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the value under key and whether it was present
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores value under key. A zero expiration uses the cache default.
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)

	Delete(ctx context.Context, key string)

	// DeleteByPrefix drops every key starting with prefix
	DeleteByPrefix(ctx context.Context, prefix string)

	Flush(ctx context.Context)
}

// PrefixRates namespaces cached rate tables
const PrefixRates = "rates:v1:"

// GenerateKey joins the prefix and params with colons,
// ex GenerateKey(PrefixRates, "svc_vm", "gold") is "rates:v1::svc_vm:gold"
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, prefix)
	for _, param := range params {
		parts = append(parts, fmt.Sprint(param))
	}
	return strings.Join(parts, ":")
}
