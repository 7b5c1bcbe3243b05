package validation

func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"Email": {
			"required": "email must not be empty",
			"email":    "email is not a valid address",
		},
		"Name": {
			"required": "name must not be empty",
			"max":      "name may be at most 100 characters",
		},
		"Password": {
			"required": "password must not be empty",
			"min":      "password must be at least 6 characters",
		},
		"ConfirmPassword": {
			"required": "confirm_password must not be empty",
			"eqfield":  "password confirmation does not match",
		},
		"PhoneNumber": {
			"min": "phone_number must be at least 9 digits",
			"max": "phone_number may be at most 15 digits",
		},
		"Code": {
			"required": "code must not be empty",
			"len":      "code must be exactly 6 digits",
		},
		"Type": {
			"required": "type must not be empty",
			"oneof":    "type must be REGISTER or FORGOT_PASSWORD",
		},
	}
	return customValidationMessages[field]
}
