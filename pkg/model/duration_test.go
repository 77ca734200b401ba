package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMicroseconds_Humanized_Boundaries(t *testing.T) {
	cases := []struct {
		in   Microseconds
		want string
	}{
		{0, "0µs"},
		{1, "1µs"},
		{999, "999µs"},
		{1000, "1.00ms"},
		{999_999, "1000.00ms"},
		{1_000_000, "1.00s"},
		{-1_000_000, "-1.00s"},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("case_%d_%d", i, int64(tc.in)), func(t *testing.T) {
			require.Equal(t, tc.want, tc.in.Humanized())
		})
	}
}

func TestMicroseconds_UnitAccessors(t *testing.T) {
	assert.InDelta(t, 1.5, Microseconds(1500).Milliseconds(), 1e-9)
	assert.InDelta(t, 2.5, Microseconds(2_500_000).Seconds(), 1e-9)
}
