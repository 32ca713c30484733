package enums

import "fmt"

// OTPPurpose describes what redeeming an OTP code unlocks.
type OTPPurpose string

const (
	OTPPurposeSignup        OTPPurpose = "signup"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

var validOTPPurposes = []OTPPurpose{
	OTPPurposeSignup,
	OTPPurposePasswordReset,
}

// IsValid reports whether the value matches the canonical OTP purpose enum.
func (p OTPPurpose) IsValid() bool {
	for _, candidate := range validOTPPurposes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseOTPPurpose converts the raw string to OTPPurpose.
func ParseOTPPurpose(value string) (OTPPurpose, error) {
	for _, candidate := range validOTPPurposes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid otp purpose %q", value)
}
