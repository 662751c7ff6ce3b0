package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := map[string]struct {
		in   []string
		want []string
	}{
		"nil stays nil":          {in: nil, want: nil},
		"blank rows are dropped": {in: []string{"", "  ", "https://a.example"}, want: []string{"https://a.example"}},
		"repeats after trimming": {in: []string{" https://a.example", "https://a.example ", "https://b.example"}, want: []string{"https://a.example", "https://b.example"}},
		"all blank":              {in: []string{" ", "\t"}, want: []string{}},
		"case is significant":    {in: []string{"https://A.example/x", "https://A.example/X"}, want: []string{"https://A.example/x", "https://A.example/X"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, DedupeAndTrim(tc.in))
		})
	}
}
