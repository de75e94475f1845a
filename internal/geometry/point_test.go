package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint_AddSub(t *testing.T) {
	a := Pt(10, 20)
	b := Pt(3, -4)

	assert.Equal(t, Pt(13, 16), a.Add(b))
	assert.Equal(t, Pt(7, 24), a.Sub(b))
	assert.Equal(t, a, a.Sub(b).Add(b))
}

func TestPoint_Round(t *testing.T) {
	tests := []struct {
		in    Point
		wantX int
		wantY int
	}{
		{Pt(0, 0), 0, 0},
		{Pt(1.4, 1.5), 1, 2},
		{Pt(-1.4, -1.5), -1, -2},
		{Pt(99.99, 0.01), 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			x, y := tt.in.Round()
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestCenteredTop(t *testing.T) {
	assert.Equal(t, Pt(710, 60), CenteredTop(1920, 500, 60))
	assert.Equal(t, Pt(0, 60), CenteredTop(400, 500, 60), "wider than screen pins left")
	assert.Equal(t, Pt(710, 0), CenteredTop(1920, 500, -5), "negative offset clamps to top")
}
