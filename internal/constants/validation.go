package constants

// Field Length Limits
const (
	MinPasswordLength = 6
	MaxPasswordLength = 100
	MinNameLength     = 1
	MaxNameLength     = 100
	MinPhoneLength    = 9
	MaxPhoneLength    = 15
	MaxEmailLength    = 255
)

// OTP Settings
const (
	OTPLength = 6
	OTPMin    = 100000
	OTPMax    = 999999
)
