package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsNumeric(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"36", true},
		{"-1.5", true},
		{"+0", true},
		{"1.0e10", true},
		{"007", true},
		{"", false},
		{" 85", false},
		{"85 ", false},
		{"1.", false},
		{".5", false},
		{"1e", false},
		{"abc", false},
		{"1e400", false},
		{"0x1p3", false},
		{"1_000", false},
		{"NaN", false},
		{"-Inf", false},
		{"12a3", false},
	}
	for _, c := range cases {
		if got := IsNumeric(c.in); got != c.want {
			t.Fatalf("IsNumeric(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestIsLiteral(t *testing.T) {
	r := require.New(t)
	r.True(IsLiteral("true"))
	r.True(IsLiteral("null"))
	r.False(IsLiteral("True"))
	r.False(IsLiteral(" false"))
}

func TestParseNumber(t *testing.T) {
	r := require.New(t)

	n, err := ParseNumber("42")
	r.NoError(err)
	r.Equal(int64(42), n)

	n, err = ParseNumber("+7")
	r.NoError(err)
	r.Equal(int64(7), n)

	n, err = ParseNumber("1.5")
	r.NoError(err)
	r.Equal(1.5, n)

	n, err = ParseNumber("1e3")
	r.NoError(err)
	r.Equal(1000.0, n)

	// beyond int64 falls back to float64
	n, err = ParseNumber("18446744073709551616")
	r.NoError(err)
	r.IsType(float64(0), n)

	_, err = ParseNumber("1e400")
	r.Error(err)
}
