package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validPayload() Payload {
	return Payload{
		Name:    "Anna Berzina",
		Email:   "anna@example.lv",
		Subject: "Question about a coupon",
		Message: "Is the 20% code still active this week?",
	}
}

func TestCheckFieldsAcceptsValidPayload(t *testing.T) {
	require.NoError(t, CheckFields(validPayload()))
}

func TestCheckFieldsRequiredFields(t *testing.T) {
	for _, mutate := range []func(*Payload){
		func(p *Payload) { p.Name = "" },
		func(p *Payload) { p.Email = "   " },
		func(p *Payload) { p.Subject = "" },
		func(p *Payload) { p.Message = "" },
	} {
		p := validPayload()
		mutate(&p)
		err := CheckFields(p)
		require.Error(t, err)
		require.Equal(t, "All fields are required", err.Error())
	}
}

func TestCheckFieldsLengthBounds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Payload)
		message string
	}{
		{
			name:    "name too long",
			mutate:  func(p *Payload) { p.Name = strings.Repeat("a", 101) },
			message: "Name must be 100 characters or less",
		},
		{
			name:    "subject too long",
			mutate:  func(p *Payload) { p.Subject = strings.Repeat("s", 201) },
			message: "Subject must be 200 characters or less",
		},
		{
			name:    "message too short",
			mutate:  func(p *Payload) { p.Message = strings.Repeat("m", 9) },
			message: "Message must be between 10 and 2000 characters",
		},
		{
			name:    "message too long",
			mutate:  func(p *Payload) { p.Message = strings.Repeat("m", 2001) },
			message: "Message must be between 10 and 2000 characters",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayload()
			tc.mutate(&p)
			err := CheckFields(p)
			require.Error(t, err)
			require.Equal(t, tc.message, err.Error())
		})
	}
}

func TestCheckFieldsBoundaryLengthsPass(t *testing.T) {
	p := validPayload()
	p.Name = strings.Repeat("n", 100)
	p.Subject = strings.Repeat("s", 200)
	p.Message = strings.Repeat("m", 10)
	require.NoError(t, CheckFields(p))

	p.Message = strings.Repeat("m", 2000)
	require.NoError(t, CheckFields(p))
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@sub.domain.org", "  USER@Example.COM  "}
	for _, email := range valid {
		require.True(t, ValidEmail(email), "expected %q to be valid", email)
	}

	invalid := []string{"a@b", "a", "a@@b.co", "", "a b@c.co", "@b.co", "a@.", strings.Repeat("x", 250) + "@b.co"}
	for _, email := range invalid {
		require.False(t, ValidEmail(email), "expected %q to be invalid", email)
	}
}

func TestTrippedHoneypot(t *testing.T) {
	p := validPayload()
	require.False(t, TrippedHoneypot(p))

	p.HoneypotURL = "https://spam.example"
	require.True(t, TrippedHoneypot(p))

	p = validPayload()
	p.HoneypotField = "filled by a bot"
	require.True(t, TrippedHoneypot(p))
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "anna@example.lv", NormalizeEmail("  Anna@Example.LV "))
}

func TestSanitizeEscapesGuardedCharacters(t *testing.T) {
	p := validPayload()
	p.Name = `<script>alert("x")</script>`
	p.Subject = `Tom & Jerry's "deal"`
	p.Message = `1 < 2 && 3 > 2, isn't it?`

	sub := Sanitize(p)
	require.Equal(t, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;", sub.Name)
	require.NotContains(t, sub.Subject, "&'\"", "guarded characters must be encoded")
	require.NotContains(t, sub.Message, "<")
	require.NotContains(t, sub.Message, ">")
	require.Equal(t, SubmissionStatus, sub.Status)
}

func TestSanitizeLeavesEmailAlone(t *testing.T) {
	p := validPayload()
	p.Email = "  Anna@Example.LV "
	sub := Sanitize(p)
	require.Equal(t, "anna@example.lv", sub.Email)
}

func TestSanitizeIsIdentityOnPlainText(t *testing.T) {
	p := validPayload()
	sub := Sanitize(p)
	require.Equal(t, p.Name, sub.Name)
	require.Equal(t, p.Subject, sub.Subject)
	require.Equal(t, p.Message, sub.Message)
}

func TestSanitizeIsInjectiveOnGuardedCharacters(t *testing.T) {
	// Each of the five guarded characters maps to a distinct entity, so no
	// two distinct raw strings collapse to the same sanitized form.
	inputs := []string{"&", "<", ">", `"`, "'"}
	seen := map[string]string{}
	for _, in := range inputs {
		p := validPayload()
		p.Message = in + " padding to satisfy length"
		out := Sanitize(p).Message
		prev, dup := seen[out]
		require.False(t, dup, "inputs %q and %q collided on %q", prev, in, out)
		seen[out] = in
	}
}
