package common_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"volgen/internal/common"
)

func TestExportName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"count", "Count"},
		{"ctrl_reg", "CtrlReg"},
		{"irq-mask", "IrqMask"},
		{"Status", "Status"},
		{"child1", "Child1"},
		{"_3d", "X3d"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, common.ExportName(tt.in))
		})
	}
}

func TestSlices(t *testing.T) {
	t.Parallel()

	assert.True(t, common.IsEmpty([]int(nil)))
	assert.False(t, common.IsEmpty([]int{1}))
	assert.True(t, common.IsSingle([]int{1}))
	assert.False(t, common.IsSingle([]int{1, 2}))
}
