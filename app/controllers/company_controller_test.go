package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeSlug(t *testing.T) {
	assert.Equal(t, "la-cocina-de-dona-maria", makeSlug("La Cocina de Doña María"))
	assert.Equal(t, "el-rincon-paisa", makeSlug("  El Rincón   Paisa  "))
	assert.Equal(t, "cafe-1810", makeSlug("Café 1810!"))
	assert.Equal(t, "", makeSlug("¡¡¡"))
}
