package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdrivecast/gdrivecast/pkg/model"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		link string
		id   string
	}{
		{link: "https://www.youtube.com/watch?v=rbCbho7aLYw", id: "rbCbho7aLYw"},
		{link: "https://youtube.com/watch?v=qVhG5Zray9A&list=PLMpEfaKcGjpW", id: "qVhG5Zray9A"},
		{link: "www.youtube.com/watch?v=OQzJR3BqS7o", id: "OQzJR3BqS7o"},
		{link: "https://m.youtube.com/watch?t=10s&v=y2FGRd47V0w", id: "y2FGRd47V0w"},
	}

	for _, tt := range tests {
		id, err := ExtractVideoID(tt.link)
		require.NoError(t, err, tt.link)
		assert.Equal(t, tt.id, id)
	}
}

func TestExtractVideoID_InvalidInput(t *testing.T) {
	tests := []string{
		"https://vimeo.com/watch?v=123",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/watch?list=PLCB9F975ECF01953C",
		"https://example.com/",
	}

	for _, link := range tests {
		_, err := ExtractVideoID(link)
		require.Error(t, err, link)
		assert.ErrorIs(t, err, model.ErrInvalidInput, link)
	}
}
