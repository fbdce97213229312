package middleware

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pattycroche/storefront/internal/interfaces/http/dto"
)

var (
	setupOnce  sync.Once
	translator ut.Translator
)

// SetupValidator configures gin's validator to name fields by their json
// (or form) tag and registers English messages. Safe to call repeatedly.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)

		english := en.New()
		trans, _ := ut.New(english, english).GetTranslator("en")
		if err := entranslations.RegisterDefaultTranslations(v, trans); err == nil {
			translator = trans
		}
	})
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// ValidationDetails converts binding errors into per-field details. It
// returns nil when err is not a validation error, e.g. malformed JSON.
func ValidationDetails(err error) []dto.ValidationDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, len(fieldErrs))
	for i, fe := range fieldErrs {
		msg := fe.Error()
		if translator != nil {
			msg = fe.Translate(translator)
		}
		details[i] = dto.ValidationDetail{Field: fe.Field(), Message: msg}
	}
	return details
}
