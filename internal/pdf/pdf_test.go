package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{"empty selects all", "", nil, false},
		{"single page", "3", []int{3}, false},
		{"comma list", "1,3,5", []int{1, 3, 5}, false},
		{"range", "2-5", []int{2, 3, 4, 5}, false},
		{"mixed", "1,3-5", []int{1, 3, 4, 5}, false},
		{"spaces", " 1 , 2-3 ", []int{1, 2, 3}, false},
		{"reversed range", "5-2", nil, true},
		{"garbage", "abc", nil, true},
		{"bad range token", "1-2-3", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageRange(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageFromFilename(t *testing.T) {
	n, err := parsePageFromFilename("page_3_image_1.png")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = parsePageFromFilename("thumbnail.png")
	assert.Error(t, err)

	_, err = parsePageFromFilename("page_x_image_1.png")
	assert.Error(t, err)
}

func TestValidateMissingFile(t *testing.T) {
	assert.Error(t, Validate("does-not-exist.pdf"))
}
