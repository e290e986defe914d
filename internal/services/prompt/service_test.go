package prompt

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLine_ReturnsAnswer(t *testing.T) {
	p := NewWithReader(strings.NewReader("backups/march.sql\n"), io.Discard)

	answer, err := p.Line("Enter the backup file to restore", "latest.sql")

	require.NoError(t, err)
	assert.Equal(t, "backups/march.sql", answer)
}

func TestLine_EmptyAnswerYieldsDefault(t *testing.T) {
	p := NewWithReader(strings.NewReader("\n"), io.Discard)

	answer, err := p.Line("Enter the backup file to restore", "latest.sql")

	require.NoError(t, err)
	assert.Equal(t, "latest.sql", answer)
}

func TestLine_PrintsDefaultInLabel(t *testing.T) {
	var out bytes.Buffer
	p := NewWithReader(strings.NewReader("\n"), &out)

	_, err := p.Line("Enter the backup file to restore", "latest.sql")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "default: latest.sql")
}

func TestConfirm_AcceptsCaseInsensitive(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"exact match", "YES\n", true},
		{"lowercase", "yes\n", true},
		{"mixed case", "Yes\n", true},
		{"surrounding whitespace", "  yes  \n", true},
		{"wrong word", "y\n", false},
		{"empty", "\n", false},
		{"no", "no\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewWithReader(strings.NewReader(tt.input), io.Discard)

			ok, err := p.Confirm("Type 'YES' to proceed", "YES")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestPassword_FallsBackToLineRead(t *testing.T) {
	// Without a terminal there is no hidden read; the password comes
	// from a plain line.
	p := NewWithReader(strings.NewReader("s3cret\n"), io.Discard)

	pw, err := p.Password("Enter your database password")

	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
}

func TestReadLine_EOFWithoutNewline(t *testing.T) {
	p := NewWithReader(strings.NewReader("no-newline"), io.Discard)

	answer, err := p.Line("file", "")

	require.NoError(t, err)
	assert.Equal(t, "no-newline", answer)
}
