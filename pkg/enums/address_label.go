package enums

import "fmt"

// AddressLabel is the user-facing tag on a saved address.
type AddressLabel string

const (
	AddressLabelHome  AddressLabel = "Home"
	AddressLabelWork  AddressLabel = "Work"
	AddressLabelOther AddressLabel = "Other"
)

var validAddressLabels = []AddressLabel{
	AddressLabelHome,
	AddressLabelWork,
	AddressLabelOther,
}

// IsValid reports whether the value matches the canonical address label enum.
func (l AddressLabel) IsValid() bool {
	for _, candidate := range validAddressLabels {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseAddressLabel converts the raw string to AddressLabel.
func ParseAddressLabel(value string) (AddressLabel, error) {
	for _, candidate := range validAddressLabels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid address label %q", value)
}
