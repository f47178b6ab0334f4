package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "working-at-height", Slugify("  Working at Height!"))
	assert.Equal(t, "module-2-basics", Slugify("Module #2: Basics"))
	assert.Equal(t, "workplace-safety-101", Slugify("  Workplace Safety: 101 "))
	assert.Equal(t, "", Slugify("***"))
}
