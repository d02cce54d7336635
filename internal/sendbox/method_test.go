package sendbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetermineMethod(t *testing.T) {
	cases := []struct {
		name   string
		size   string
		origin string
		dest   string
		want   string
	}{
		{"small same state", SizeSmall, "Lagos", "Lagos", MethodMotorcycle},
		{"medium same state", SizeMedium, "Lagos", "Lagos", MethodMotorcycle},
		{"empty size same state", "", "Lagos", "Lagos", MethodMotorcycle},
		{"large same state", SizeLarge, "Lagos", "Lagos", MethodVan},
		{"small interstate", SizeSmall, "Lagos", "Oyo", MethodVan},
		{"medium interstate", SizeMedium, "Abuja", "Kano", MethodVan},
		{"large interstate", SizeLarge, "Lagos", "Rivers", MethodVan},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DetermineMethod(tc.size, tc.origin, tc.dest))
		})
	}
}

func TestDetermineMethod_Deterministic(t *testing.T) {
	first := DetermineMethod(SizeMedium, "Lagos", "Lagos")
	for i := 0; i < 100; i++ {
		require.Equal(t, first, DetermineMethod(SizeMedium, "Lagos", "Lagos"))
	}
}
