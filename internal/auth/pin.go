package auth

import (
	pkgauth "github.com/BradenHooton/wakeguard/pkg/auth"
)

// AuthMode is decided once at startup: Disabled when no PIN hash is
// configured, otherwise Enabled with the hash. The zero value is Disabled.
type AuthMode struct {
	hash string
}

// Disabled returns the mode in which every protected route is open
func Disabled() AuthMode {
	return AuthMode{}
}

// Enabled returns the mode gated by the given bcrypt PIN hash
func Enabled(hash string) AuthMode {
	return AuthMode{hash: hash}
}

// ModeFromHash selects Enabled for a non-empty hash and Disabled otherwise
func ModeFromHash(hash string) AuthMode {
	if hash == "" {
		return Disabled()
	}
	return Enabled(hash)
}

// IsEnabled reports whether authentication is required
func (m AuthMode) IsEnabled() bool {
	return m.hash != ""
}

// PinVerifier checks candidate PINs against the configured hash
type PinVerifier struct {
	mode AuthMode
}

// NewPinVerifier creates a PinVerifier for mode
func NewPinVerifier(mode AuthMode) *PinVerifier {
	return &PinVerifier{mode: mode}
}

// IsEnabled reports whether a PIN hash was configured at startup
func (v *PinVerifier) IsEnabled() bool {
	return v.mode.IsEnabled()
}

// Verify reports whether candidate matches the configured PIN.
// With authentication disabled every candidate passes. Candidates that are
// not 4-6 digits fail without running bcrypt. A malformed stored hash fails
// closed.
func (v *PinVerifier) Verify(candidate string) bool {
	if !v.mode.IsEnabled() {
		return true
	}
	if !pkgauth.IsValidPINFormat(candidate) {
		return false
	}
	return pkgauth.ComparePIN(v.mode.hash, candidate) == nil
}
