package gemini_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"github.com/codecanvas/codecanvas/internal/gemini"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want gemini.ErrorKind
	}{
		{
			name: "rate limited",
			err:  genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"},
			want: gemini.KindQuota,
		},
		{
			name: "bad api key",
			err:  genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid"},
			want: gemini.KindInvalidCredential,
		},
		{
			name: "permission denied",
			err:  genai.APIError{Code: 403, Status: "PERMISSION_DENIED"},
			want: gemini.KindInvalidCredential,
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("generating response: %w", genai.APIError{Code: 429}),
			want: gemini.KindQuota,
		},
		{
			name: "quota mentioned in a plain error",
			err:  errors.New("request failed: Quota exceeded for project"),
			want: gemini.KindQuota,
		},
		{
			name: "server error is transient",
			err:  genai.APIError{Code: 500, Status: "INTERNAL"},
			want: gemini.KindTransient,
		},
		{
			name: "network error is transient",
			err:  errors.New("dial tcp: connection refused"),
			want: gemini.KindTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, gemini.Classify(tt.err))
		})
	}
}
