package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetPath(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   string
	}{
		{name: "top level", target: Target{Name: "Oncology"}, want: "Oncology"},
		{name: "nested", target: Target{Name: "ONC-1 - Trial One", ParentPath: "Oncology/"}, want: "Oncology/ONC-1 - Trial One"},
		{name: "slash in name", target: Target{Name: "A/B testing", ParentPath: "/Oncology"}, want: "Oncology/A-B testing"},
		{name: "dot name", target: Target{Name: ".."}, want: "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.target.Path())
		})
	}
}

func TestClampDepth(t *testing.T) {
	assert.Equal(t, 0, ClampDepth(-1, 3))
	assert.Equal(t, 2, ClampDepth(2, 3))
	assert.Equal(t, 3, ClampDepth(9, 3))
}
