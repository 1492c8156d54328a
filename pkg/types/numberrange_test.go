package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSequenceNumber(t *testing.T) {
	tests := []struct {
		prefix string
		n      int64
		want   string
	}{
		{"M", 1000, "M-1000"},
		{"M", 3, "M-0003"},
		{"PROJ", 42, "PROJ-0042"},
		{"M", 123456, "M-123456"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSequenceNumber(tt.prefix, tt.n))
	}
}

func TestNumberRangeRemaining(t *testing.T) {
	fresh := &NumberRange{RangeStart: 1000, RangeEnd: 1999, CurrentNumber: 999}
	assert.Equal(t, int64(1000), fresh.Remaining())

	spent := &NumberRange{RangeStart: 1000, RangeEnd: 1999, CurrentNumber: 1999}
	assert.Equal(t, int64(0), spent.Remaining())
}
