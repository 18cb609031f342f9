package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		region string
		want   string
	}{
		{"national us format", "(202) 456-1111", "US", "+12024561111"},
		{"international format ignores region", "+44 20 7946 0958", "US", "+442079460958"},
		{"lower-case region", "202-456-1111", "us", "+12024561111"},
		{"empty", "   ", "US", ""},
		{"unparseable kept as typed", "ext. 42", "US", "ext. 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.raw, tt.region))
		})
	}
}
