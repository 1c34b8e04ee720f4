package common

import (
	"fmt"
	"slices"

	"hirelens/internal/formatters"
)

// ValidateOutputFormat checks format against the configured formats and
// the formats a formatter is registered for. An empty configured list
// allows every registered format.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	supported := GetSupportedFormats(supportedFormats)
	if slices.Contains(supported, format) {
		return nil
	}
	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supported)
}

// GetSupportedFormats returns the configured formats that have a
// registered formatter, in configured order.
func GetSupportedFormats(supportedFormats []string) []string {
	registered := formatters.GlobalRegistry.GetSupportedFormats()
	if len(supportedFormats) == 0 {
		return registered
	}
	out := make([]string, 0, len(supportedFormats))
	for _, f := range supportedFormats {
		if slices.Contains(registered, f) {
			out = append(out, f)
		}
	}
	return out
}
