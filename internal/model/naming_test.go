package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTagName(t *testing.T) {
	assert.True(t, ValidTagName("welcome"))
	assert.True(t, ValidTagName(strings.Repeat("a", MaxNameLength)))

	assert.False(t, ValidTagName(""))
	assert.False(t, ValidTagName("   "))
	assert.False(t, ValidTagName(strings.Repeat("a", MaxNameLength+1)))
	assert.False(t, ValidTagName("wel,come"))
	assert.False(t, ValidTagName("wel|come"))
}

func TestValidAliasName(t *testing.T) {
	assert.True(t, ValidAliasName("hello"))
	assert.True(t, ValidAliasName(strings.Repeat("a", MaxAliasLength)))

	assert.False(t, ValidAliasName(""))
	assert.False(t, ValidAliasName(strings.Repeat("a", MaxAliasLength+1)))
	assert.False(t, ValidAliasName("he,llo"))
	assert.False(t, ValidAliasName("he|llo"))
}
