package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom
// rules.
//
// Declarative validation runs through go-playground/validator struct
// tags; rules that cannot be expressed in tags follow as custom checks.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// Seeded user ids and emails must be unique.
	ids := make(map[string]bool)
	emails := make(map[string]bool)
	for i, u := range cfg.Users {
		if ids[u.ID] {
			return fmt.Errorf("users[%d]: duplicate user id %q", i, u.ID)
		}
		ids[u.ID] = true
		if emails[u.Email] {
			return fmt.Errorf("users[%d]: duplicate email %q", i, u.Email)
		}
		emails[u.Email] = true
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly
// messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
