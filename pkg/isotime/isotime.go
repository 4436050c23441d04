// Package isotime formats timestamps the way browsers render
// Date.prototype.toISOString: UTC with millisecond precision.
package isotime

import "time"

const Layout = "2006-01-02T15:04:05.000Z"

func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}
