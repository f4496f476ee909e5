package validators

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email string `json:"email" binding:"required,lowercase,email"`
	Slug  string `json:"slug" binding:"omitempty,slug"`
}

func TestRegisteredRules(t *testing.T) {
	Register()

	err := binding.Validator.ValidateStruct(signup{Email: "Ana@Example.com", Slug: "Bad Slug"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, "lowercase", fields["email"])
	assert.Equal(t, "slug", fields["slug"])

	assert.NoError(t, binding.Validator.ValidateStruct(signup{Email: "ana@example.com", Slug: "ao-thun"}))
}
