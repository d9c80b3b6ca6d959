package auth

import (
	"errors"

	"github.com/nyaruka/phonenumbers"
)

// validPhoneNumber is an ozzo rule for the optional profile phone.
// Numbers must be in international format since accounts carry no
// region information.
func validPhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return errors.New("must be an international phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}

	return nil
}
