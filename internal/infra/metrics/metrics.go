// File: internal/infra/metrics/metrics.go
package metrics

import "strings"

// Label values are lowercased and trimmed so that callers cannot blow up cardinality
// with accidental variants of the same value.
func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
