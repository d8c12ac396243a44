package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	json "github.com/goccy/go-json"
)

// maxJSONBody caps JSON request bodies (token lists, single tokens).
const maxJSONBody = 4 << 20

type validatorSvc struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

// requestValidator returns the shared validator with English messages that
// name fields by their json tag.
func requestValidator() *validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			name, _, _ := strings.Cut(tag, ",")
			return name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		vSvc = &validatorSvc{validate: v, translator: trans}
	})
	return vSvc
}

// decodeJSON decodes a single JSON value from the body into T and
// validates it. Unknown fields and trailing data are rejected.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var dst T
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return dst, fmt.Errorf("request body too large: %w", err)
		}
		if errors.Is(err, io.EOF) {
			return dst, &validationError{detail: "empty body"}
		}
		return dst, fmt.Errorf("parse json: %w", err)
	}
	if dec.More() {
		return dst, fmt.Errorf("parse json: unexpected trailing data")
	}

	if err := validateStruct(dst); err != nil {
		return dst, err
	}
	return dst, nil
}

// validateStruct runs the validator and returns the first translated
// failure as a validationError.
func validateStruct(v any) error {
	svc := requestValidator()
	err := svc.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &validationError{detail: verrs[0].Translate(svc.translator)}
	}
	return fmt.Errorf("validate request: %w", err)
}
