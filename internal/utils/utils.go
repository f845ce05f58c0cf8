package utils

import (
	"gopkg.in/go-playground/validator.v9"
)

//Validate -_-
var Validate *validator.Validate

func init() {
	Validate = validator.New()
}
