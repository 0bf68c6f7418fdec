package validation

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	MaxPrizeLength    = 256
	MaxHostNameLength = 64
)

// ValidatePrize trims the prize and checks its length. It returns the trimmed value.
func ValidatePrize(prize string) (string, error) {
	prize = strings.TrimSpace(prize)
	if prize == "" {
		return "", fmt.Errorf("must not be empty")
	}
	if utf8.RuneCountInString(prize) > MaxPrizeLength {
		return "", fmt.Errorf("cannot exceed %d characters", MaxPrizeLength)
	}
	return prize, nil
}

// NormalizeHostName trims the display name and cuts it to MaxHostNameLength runes.
func NormalizeHostName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= MaxHostNameLength {
		return name
	}
	return string([]rune(name)[:MaxHostNameLength])
}

var registerOnce sync.Once

// RegisterBindings adds the custom tags used in request DTOs to gin's validator.
// Safe to call more than once.
func RegisterBindings() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}
