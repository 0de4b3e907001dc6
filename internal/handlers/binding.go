package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goldentime/records-api/internal/services"
	"github.com/gorilla/schema"
)

const maxFormMemory = 1 << 20

var (
	validate    = newValidator()
	formDecoder = newFormDecoder()
)

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("form")
	d.IgnoreUnknownKeys(true)
	return d
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind fills dst from a JSON or form body and validates it
func bind(r *http.Request, dst interface{}) error {
	if isForm(r) {
		if err := parseForm(r); err != nil {
			return services.NewValidationError("Invalid form body")
		}
		if err := decodeValues(dst, r.Form); err != nil {
			return err
		}
	} else if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return services.NewValidationError("Invalid request body")
	}
	return validateStruct(dst)
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

// decodeValues fills dst from query or form values keyed by form tags
func decodeValues(dst interface{}, values url.Values) error {
	err := formDecoder.Decode(dst, values)
	if err == nil {
		return nil
	}
	var multi schema.MultiError
	if errors.As(err, &multi) {
		keys := make([]string, 0, len(multi))
		for k := range multi {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var conv schema.ConversionError
		if errors.As(multi[keys[0]], &conv) && conv.Type != nil && conv.Type.Kind() == reflect.Int {
			return services.NewValidationError(conv.Key + " must be a number")
		}
		return services.NewValidationError(keys[0] + " is invalid")
	}
	return services.NewValidationError("Invalid request parameters")
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return services.NewValidationError(fieldMessage(verrs[0]))
	}
	return services.NewValidationError(err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "uuid":
		return fe.Field() + " must be a valid id"
	}
	return fe.Field() + " is invalid"
}
