package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	at := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		template string
		seq      int64
		want     string
	}{
		{DefaultWorkOrderNumberTemplate, 12, "WO-20260307-0012"},
		{"Q{YY}{MM}-{SEQ}", 5, "Q2603-5"},
		{"{SEQ2}", 1234, "1234"},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			got, err := Number(tt.template, at, tt.seq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumberErrors(t *testing.T) {
	at := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	_, err := Number("", at, 1)
	assert.ErrorIs(t, err, ErrEmptyTemplate)

	_, err = Number(DefaultWorkOrderNumberTemplate, at, 0)
	assert.ErrorIs(t, err, ErrInvalidSequence)

	_, err = Number("WO-{WEEK}-{SEQ}", at, 1)
	assert.Error(t, err)
}
