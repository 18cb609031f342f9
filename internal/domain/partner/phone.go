package partner

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// NormalizePhone formats a phone number as E.164 so that formatting-only
// edits ("(555) 010-0199" vs "+1 555 010 0199") do not register as
// snapshot drift. Numbers that cannot be parsed are kept as typed.
func NormalizePhone(raw, defaultRegion string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	num, err := libphonenumber.Parse(trimmed, strings.ToUpper(defaultRegion))
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return trimmed
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}
