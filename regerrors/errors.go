package regerrors

import (
	"errors"
	"strings"
)

// Document (D) Errors
var (
	ErrDMalformedDocument = errors.New("D1|MalformedDocument: Register info document is not well-formed markup.")
	ErrDBadVersionString  = errors.New("D2|BadVersionString: Version identifier does not parse as a runtime release.")
	ErrDBadVersionRange   = errors.New("D3|BadVersionRange: Version range attribute does not parse.")
	ErrDBadStackAttr      = errors.New("D4|BadStackAttr: Stack offset or alignment attribute is not an integer.")
	ErrDEmptyDocument     = errors.New("D5|EmptyDocument: Document contains no register_info records.")
)

// Validation (V) Errors
var (
	ErrVUnknownRegister   = errors.New("V1|UnknownRegister: Register name is not part of the architecture namespace.")
	ErrVRoleConflict      = errors.New("V2|RoleConflict: Register bound to a disjoint-usage role also appears as an argument register.")
	ErrVOverlappingRanges = errors.New("V3|OverlappingRanges: Two register_info records have overlapping version ranges.")
	ErrVBadAlignment      = errors.New("V4|BadAlignment: Stack max alignment is not a positive power of two.")
	ErrVBadZeroKind       = errors.New("V5|BadZeroKind: Duffzero zero-source kind is not one of int, float.")
	ErrVMissingDuffDest   = errors.New("V6|MissingDuffDest: Duffzero record has a zero source but no destination register.")
	ErrVUnknownArch       = errors.New("V7|UnknownArch: No register namespace defined for this architecture.")
)

// Selection (S) Errors
var (
	ErrSNoProfile  = errors.New("S1|NoProfile: No profile's version range contains the requested version.")
	ErrSNoFallback = errors.New("S2|NoFallback: Version is unrecognized and the registry defines no fallback profile.")
)

var allErrors = []error{
	ErrDMalformedDocument, ErrDBadVersionString, ErrDBadVersionRange, ErrDBadStackAttr, ErrDEmptyDocument,
	ErrVUnknownRegister, ErrVRoleConflict, ErrVOverlappingRanges, ErrVBadAlignment, ErrVBadZeroKind,
	ErrVMissingDuffDest, ErrVUnknownArch,
	ErrSNoProfile, ErrSNoFallback,
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	code := parts[0]
	// Wrapped errors carry context before the sentinel text.
	if idx := strings.LastIndex(code, " "); idx >= 0 {
		code = code[idx+1:]
	}
	return strings.TrimSpace(code)
}

// GetErrorName returns the short name of a known error, or "".
func GetErrorName(err error) string {
	for _, known := range allErrors {
		if errors.Is(err, known) {
			parts := strings.SplitN(known.Error(), "|", 2)
			name := strings.SplitN(parts[1], ":", 2)[0]
			return name
		}
	}
	return ""
}

// GetErrorDesc extracts the error description from the error message.
func GetErrorDesc(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	parts := strings.SplitN(errStr, ":", 2)
	if len(parts) < 2 {
		return "DESC NOT SET"
	}
	return strings.TrimSpace(parts[1])
}
