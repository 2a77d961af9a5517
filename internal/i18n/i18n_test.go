package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"es", "en"}, c.Languages())
	assert.Equal(t, "Detener", c.Text("es", "action_stop"))
	assert.Equal(t, "Stop", c.Text("en", "action_stop"))
}

func TestText_Fallbacks(t *testing.T) {
	c := MustLoad()

	assert.Equal(t, "Detener", c.Text("fr", "action_stop"))
	assert.Equal(t, "no_such_key", c.Text("en", "no_such_key"))
	assert.Equal(t, "Time left: 24:58", c.Textf("en", "notification_body", "24:58"))
}

func TestMatch(t *testing.T) {
	c := MustLoad()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"es", "es", true},
		{"EN", "en", true},
		{"en-GB", "en", true},
		{"es-MX", "es", true},
		{"", "", false},
		{"not a tag!", "", false},
		{"ja", "", false},
	}
	for _, tt := range tests {
		got, ok := c.Match(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNext_Cycles(t *testing.T) {
	c := MustLoad()

	assert.Equal(t, "en", c.Next("es"))
	assert.Equal(t, "es", c.Next("en"))
	assert.Equal(t, "es", c.Next("xx"))
}

func TestParse_RequiresFallback(t *testing.T) {
	_, err := Parse([]byte("en:\n  a: b\n"), "es")
	assert.Error(t, err)
}
