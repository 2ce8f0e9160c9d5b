// Package domain contains core concepts of the chat system: identities,
// rooms, bans. No runtime, network, or UI logic should be added here.
package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MainHall is the one room that always exists, has no owner, and cannot be
// deleted or banned from.
const MainHall = "MainHall"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Alphanumeric, first character non-numeric. Length is validated
	// separately so identities and room names can share the rule.
	_ = v.RegisterValidation("chatname", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		for i, r := range name {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
			if i == 0 && unicode.IsDigit(r) {
				return false
			}
		}
		return true
	})
	return v
}

type identityCandidate struct {
	Name string `validate:"required,min=3,max=16,chatname"`
}

type roomNameCandidate struct {
	Name string `validate:"required,min=3,max=32,chatname"`
}

// ValidIdentity reports whether a requested identity respects the charset
// rule: 3-16 alphanumeric characters, first character non-numeric.
func ValidIdentity(name string) bool {
	return validate.Struct(identityCandidate{Name: name}) == nil
}

// ValidRoomName is the same rule widened to 32 characters.
func ValidRoomName(name string) bool {
	return validate.Struct(roomNameCandidate{Name: name}) == nil
}

var guestPattern = regexp.MustCompile(`^guest(\d{1,3})$`)

// GuestName forms the default identity handed to a fresh connection.
func GuestName(id int) string {
	return fmt.Sprintf("guest%d", id)
}

// GuestNumber extracts the numeric suffix of a default guest identity.
// It returns false for identities that were chosen by the user.
func GuestNumber(identity string) (int, bool) {
	m := guestPattern.FindStringSubmatch(identity)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
