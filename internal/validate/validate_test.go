package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleSet_Evaluate_Valid(t *testing.T) {
	rs := RuleSet{
		{Field: "name", Rules: []Rule{NotEmpty(), LettersOnly("name must only contain letters")}},
		{Field: "email", Rules: []Rule{Email("invalid email")}},
	}

	failures := rs.Evaluate(map[string]string{
		"name":  "Jonas Schmedtmann",
		"email": "jonas@example.com",
	})
	assert.Empty(t, failures)
}

func TestRuleSet_Evaluate_CollectsAllFailures(t *testing.T) {
	rs := RuleSet{
		{Field: "name", Rules: []Rule{NotEmpty(), LettersOnly("name must only contain letters")}},
		{Field: "email", Rules: []Rule{Email("invalid email")}},
		{Field: "password", Rules: []Rule{MinLength(8, "password too short")}},
	}

	failures := rs.Evaluate(map[string]string{
		"name":     "   ",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Len(t, failures, 3)
	assert.Contains(t, failures, "invalid email")
	assert.Contains(t, failures, "password too short")
}

func TestRuleSet_Evaluate_MissingFieldFailsNotEmpty(t *testing.T) {
	rs := RuleSet{
		{Field: "email", Rules: []Rule{NotEmpty()}},
	}

	failures := rs.Evaluate(map[string]string{})
	assert.Equal(t, []string{"must not be empty"}, failures)
}

func TestPredicates(t *testing.T) {
	assert.True(t, NotEmpty().Check("hi"))
	assert.False(t, NotEmpty().Check("  "))

	assert.True(t, MinLength(3, "").Check("abc"))
	assert.False(t, MinLength(3, "").Check("ab"))

	assert.True(t, MaxLength(3, "").Check("abc"))
	assert.False(t, MaxLength(3, "").Check("abcd"))

	assert.True(t, LettersOnly("").Check("The Forest Hiker"))
	assert.False(t, LettersOnly("").Check("Tour #1"))

	assert.True(t, Email("").Check("user@example.com"))
	assert.False(t, Email("").Check("user@example"))
	assert.False(t, Email("").Check("user example.com"))

	assert.True(t, Equals("secret", "").Check("secret"))
	assert.False(t, Equals("secret", "").Check("other"))
}
