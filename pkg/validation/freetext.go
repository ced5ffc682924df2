// Package validation screens user-supplied free text before it is stored on
// a session or echoed into prompts.
package validation

import (
	"fmt"
	"unicode/utf8"

	libinjection "github.com/corazawaf/libinjection-go"
)

// MaxFreeTextLength bounds any single free-text field.
const MaxFreeTextLength = 2000

// ScreenFreeText rejects text that is oversized, not valid UTF-8, or that
// carries SQL or script injection payloads. Tasting notes and chat input
// are stored verbatim and may be rendered elsewhere, so both checks apply
// even though the engine itself never executes SQL on them.
func ScreenFreeText(text string) error {
	if len(text) > MaxFreeTextLength {
		return fmt.Errorf("text exceeds %d bytes", MaxFreeTextLength)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("text is not valid UTF-8")
	}
	if sqli, _ := libinjection.IsSQLi(text); sqli {
		return fmt.Errorf("text rejected: SQL injection pattern detected")
	}
	if libinjection.IsXSS(text) {
		return fmt.Errorf("text rejected: script injection pattern detected")
	}
	return nil
}
