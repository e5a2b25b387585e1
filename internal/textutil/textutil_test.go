package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Elf", TitleCase("elf"))
	assert.Equal(t, "Vine Leshy", TitleCase("vine leshy"))
	assert.Equal(t, "Human", TitleCase("HUMAN"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Power", Truncate("Power", 10))
	assert.Equal(t, "Pow...", Truncate("Power Attack", 3))
	assert.Equal(t, "Ré...", Truncate("Révolte", 2))
}

func TestHashIsStable(t *testing.T) {
	assert.Equal(t, Hash("Power Attack"), Hash("Power Attack"))
	assert.NotEqual(t, Hash("Power Attack"), Hash("Cleave"))
	assert.Len(t, Hash(""), 64)
}

func TestWidthCountsRunes(t *testing.T) {
	assert.Equal(t, 7, Width("Révolte"))
}
