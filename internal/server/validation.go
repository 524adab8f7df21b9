package server

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxTitleLength    = 80
	maxQuestionLength = 280
	maxNameLength     = 40
	maxReasonLength   = 200
	maxImageBytes     = 2 << 20
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("title", func(fl validator.FieldLevel) bool {
			return validOptional(fl.Field().String(), maxTitleLength)
		})
		_ = engine.RegisterValidation("question", func(fl validator.FieldLevel) bool {
			return validOptional(fl.Field().String(), maxQuestionLength)
		})
		_ = engine.RegisterValidation("name", func(fl validator.FieldLevel) bool {
			_, err := validateName(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("reason", func(fl validator.FieldLevel) bool {
			return validOptional(fl.Field().String(), maxReasonLength)
		})
	})
}

func validateName(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

func validOptional(text string, maxLen int) bool {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return true
	}
	return utf8.RuneCountInString(trimmed) <= maxLen && isSafeText(trimmed)
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", fmt.Errorf("%s must be %d characters or fewer", label, maxLen)
	}
	if !isSafeText(trimmed) {
		return "", fmt.Errorf("%s contains unsupported characters", label)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

// isSafeText accepts printable runes only.
func isSafeText(text string) bool {
	for _, r := range text {
		if r == utf8.RuneError || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
