package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Áo Thun Nam":         "ao-thun-nam",
		"Đầm dự tiệc":         "dam-du-tiec",
		"  Summer -- Sale!! ": "summer-sale",
		"T-Shirt 2024":        "t-shirt-2024",
		"!!!":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Make(in), in)
	}
}
