package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		in      Profile
		missing []string
		invalid []string
	}{
		{name: "valid", in: Profile{FirstName: "Ada", LastName: "L", Email: "ada@x.com"}},
		{name: "valid with age bounds", in: Profile{FirstName: "A", LastName: "L", Email: "a@x.io", Age: Int(99)}},
		{name: "all missing", in: Profile{}, missing: []string{"firstName", "lastName", "email"}},
		{name: "no domain dot", in: Profile{FirstName: "A", LastName: "L", Email: "a@localhost"}, invalid: []string{"email"}},
		{name: "no at", in: Profile{FirstName: "A", LastName: "L", Email: "ada.x.com"}, invalid: []string{"email"}},
		{name: "negative age", in: Profile{FirstName: "A", LastName: "L", Email: "a@x.io", Age: Int(-1)}, invalid: []string{"age"}},
		{name: "age too large", in: Profile{FirstName: "A", LastName: "L", Email: "a@x.io", Age: Int(100)}, invalid: []string{"age"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.missing == nil && tc.invalid == nil {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.ElementsMatch(t, tc.missing, ve.Missing)
			assert.ElementsMatch(t, tc.invalid, ve.Invalid)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	ve := &ValidationError{Missing: []string{"firstName"}, Invalid: []string{"age"}}
	assert.Equal(t, "missing required fields: firstName; invalid fields: age", ve.Error())
	assert.Equal(t, []string{"firstName", "age"}, ve.Fields())

	remote := &ValidationError{Message: "First name, last name, and email are required"}
	assert.Equal(t, "First name, last name, and email are required", remote.Error())
}

func TestPatchApply(t *testing.T) {
	base := Profile{ID: "1", FirstName: "Ada", LastName: "L", Email: "a@x.io", Age: Int(5)}
	first := "Grace"
	out := Patch{FirstName: &first}.Apply(base)
	assert.Equal(t, "1", out.ID)
	assert.Equal(t, "Grace", out.FirstName)
	assert.Equal(t, 5, *out.Age)
	assert.Equal(t, "Ada", base.FirstName)

	assert.False(t, Patch{FirstName: &first}.IsEmpty())
	assert.True(t, Patch{}.IsEmpty())
}
