package phone

import (
	"github.com/ttacon/libphonenumber"

	dErrors "agrilink/pkg/domain-errors"
)

// Normalize validates a phone number against the given default region and
// returns it in E.164 form. Every number crossing into the gateway goes
// through here so stored numbers have one canonical shape.
func Normalize(phoneNumber, defaultRegion string) (string, error) {
	parsed, err := libphonenumber.Parse(phoneNumber, defaultRegion)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeValidation, "invalid phone number")
	}
	if !libphonenumber.IsValidNumber(parsed) {
		return "", dErrors.New(dErrors.CodeValidation, "phone number is not valid for region "+defaultRegion)
	}
	return libphonenumber.Format(parsed, libphonenumber.E164), nil
}
