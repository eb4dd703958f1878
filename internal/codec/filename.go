package codec

import (
	"fmt"
	"strings"
	"time"
)

var stampReplacer = strings.NewReplacer(":", "-", "T", "-")

// ExportFilename builds "expenses-<username>-<timestamp>.<ext>" with the
// timestamp's colons and date/time separator replaced by dashes, so the name
// is safe on every filesystem.
func ExportFilename(username string, now time.Time, ext string) string {
	stamp := stampReplacer.Replace(now.UTC().Format(time.RFC3339))
	return fmt.Sprintf("expenses-%s-%s.%s", username, stamp, ext)
}
