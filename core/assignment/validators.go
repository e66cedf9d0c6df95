package assignment

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	// custom validation tags & texts
	itemKindTag  = "itemkind"
	itemKindText = "invalid work item kind"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(itemKindTag, itemKindValidation)
	core.RegisterCustomTranslation(validate, translator, itemKindTag, itemKindText)
}

func itemKindValidation(fl validator.FieldLevel) bool {
	switch Kind(fl.Field().String()) {
	case KindCheck, KindTask, KindSpecial, KindChallenge:
		return true
	}
	return false
}
