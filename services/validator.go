package services

import (
	"chat-room/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateCommand(cmd any) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return nil
}
