package validatorx

import (
	"sync"

	gpvalidator "github.com/go-playground/validator/v10"
	"github.com/tdhoang/evdealer-client/constant"
)

var (
	v   *gpvalidator.Validate
	mut sync.Mutex
)

// Init initializes the validator singleton (idempotent)
func Init() {
	mut.Lock()
	defer mut.Unlock()
	if v != nil {
		return
	}
	v = gpvalidator.New()
	_ = v.RegisterValidation("restockstatus", validateRestockStatus)
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if v == nil {
		Init()
	}
	return v.Struct(s)
}

// validateRestockStatus accepts an empty value or any known restock status.
func validateRestockStatus(fl gpvalidator.FieldLevel) bool {
	s := constant.RestockStatus(fl.Field().String())
	return s == "" || s.Valid()
}
