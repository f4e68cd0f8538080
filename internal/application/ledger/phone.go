package ledger

import (
	"strings"

	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/ttacon/libphonenumber"
)

// NormalizePhone validates a phone number and formats it as E.164. Numbers
// without a country prefix are read in defaultRegion. Empty input stays empty.
func NormalizePhone(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	num, err := libphonenumber.Parse(raw, strings.ToUpper(defaultRegion))
	if err != nil {
		return "", shared.NewDomainError(shared.CodeInvalidPhone, "Phone number cannot be parsed: "+raw)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", shared.NewDomainError(shared.CodeInvalidPhone, "Phone number is not valid: "+raw)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
