package types

// SecretString holds a sensitive value (database URL, Twilio auth token) and
// redacts itself in logs and JSON output. Call Reveal to obtain the raw value
// at the point of use.
type SecretString string

const redactedPlaceholder = "[REDACTED]"

// String implements fmt.Stringer with a redacted placeholder so secrets never
// leak through %v/%s formatting or slog attributes.
func (s SecretString) String() string {
	if s == "" {
		return ""
	}
	return redactedPlaceholder
}

// Reveal returns the underlying secret value.
func (s SecretString) Reveal() string { return string(s) }

// IsSet reports whether a value is present.
func (s SecretString) IsSet() bool { return s != "" }

// MarshalJSON redacts the value in JSON output.
func (s SecretString) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte(`""`), nil
	}
	return []byte(`"` + redactedPlaceholder + `"`), nil
}

// UnmarshalText allows envconfig and other text-based loaders to populate the
// secret from its raw representation.
func (s *SecretString) UnmarshalText(text []byte) error {
	*s = SecretString(text)
	return nil
}
