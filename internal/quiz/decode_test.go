package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Paris", want: "Paris"},
		{in: "What%20is%20this%3F", want: "What is this?"},
		{in: "a+b", want: "a+b"},
		{in: "Caf%C3%A9", want: "Café"},
		{in: "%2F%25", want: "/%"},
		{in: "", want: ""},
		{in: "100%", wantErr: true},
		{in: "%zz", wantErr: true},
		{in: "%C3", wantErr: true},
		{in: "%FF%FE", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Decode(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrDecode)
				var de *DecodeError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.in, de.Text)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
