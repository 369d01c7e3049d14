package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeverity(t *testing.T) {
	cases := []struct {
		in    string
		want  Severity
		known bool
	}{
		{"high", SeverityHigh, true},
		{" LOW ", SeverityLow, true},
		{"Medium", SeverityMedium, true},
		{"", SeverityMedium, false},
		{"critical", SeverityMedium, false},
	}
	for _, c := range cases {
		got, ok := ParseSeverity(c.in)
		assert.Equal(t, c.want, got, c.in)
		assert.Equal(t, c.known, ok, c.in)
		assert.Equal(t, c.want, NormalizeSeverity(c.in), c.in)
	}
}
