package validators

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	registerOnce sync.Once
)

// Register installs the custom rules on gin's validator and makes field
// errors report JSON names.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("lowercase", isLowercase)
		_ = v.RegisterValidation("slug", isSlug)
	})
}

func jsonFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func isLowercase(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == strings.ToLower(s)
}

func isSlug(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || slugPattern.MatchString(s)
}
