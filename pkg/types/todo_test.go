package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateApply(t *testing.T) {
	base := Todo{ID: 7, Title: "old", Status: false}

	tests := []struct {
		name   string
		update Update
		want   Todo
	}{
		{
			name:   "title only",
			update: SetTitle("new"),
			want:   Todo{ID: 7, Title: "new", Status: false},
		},
		{
			name:   "status only",
			update: SetStatus(true),
			want:   Todo{ID: 7, Title: "old", Status: true},
		},
		{
			name:   "both fields",
			update: Update{Title: SetTitle("both").Title, Status: SetStatus(true).Status},
			want:   Todo{ID: 7, Title: "both", Status: true},
		},
		{
			name:   "empty update leaves record unchanged",
			update: Update{},
			want:   base,
		},
		{
			name:   "empty title is a real value",
			update: SetTitle(""),
			want:   Todo{ID: 7, Title: "", Status: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.update.Apply(base))
		})
	}
}

func TestUpdateIsEmpty(t *testing.T) {
	assert.True(t, Update{}.IsEmpty())
	assert.False(t, SetTitle("x").IsEmpty())
	assert.False(t, SetStatus(false).IsEmpty())
}
