package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	if input.ID == "" {
		errors = append(errors, ValidationError{"id", "is required"})
	}
	if input.Name == "" {
		errors = append(errors, ValidationError{"nome", "is required"})
	}
	if input.Email == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	}
	if input.Phone == "" {
		errors = append(errors, ValidationError{"telefone", "is required"})
	}

	return errors
}

// ParseCreateLeadInput decodifica e valida o corpo bruto do POST.
// Qualquer falha vira InvalidInput, antes de tocar na store.
func ParseCreateLeadInput(body string) (CreateLeadInput, error) {
	var input CreateLeadInput

	if strings.TrimSpace(body) == "" {
		return input, InvalidInputError()
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return input, InvalidInputError()
	}

	// Campos não-string (ex: "id": 10) são tratados como ausentes.
	input.ID = stringField(raw, "id")
	input.Name = stringField(raw, "nome")
	input.Email = stringField(raw, "email")
	input.Phone = stringField(raw, "telefone")

	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return input, InvalidInputError()
	}

	return input, nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}
