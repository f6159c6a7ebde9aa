package compat

import (
	"testing"

	"github.com/n3wth/skillflow/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestIsCompatible_Reflexive(t *testing.T) {
	for _, ioType := range models.IOTypes() {
		assert.True(t, IsCompatible(ioType, ioType), ioType)
	}
}

func TestIsCompatible_WildcardAbsorbs(t *testing.T) {
	for _, ioType := range models.IOTypes() {
		assert.True(t, IsCompatible(models.IOTypeAny, ioType), ioType)
		assert.True(t, IsCompatible(ioType, models.IOTypeAny), ioType)
	}

	assert.True(t, IsCompatible("video", models.IOTypeAny))
}

func TestIsCompatible_Table(t *testing.T) {
	tests := []struct {
		producer models.IOType
		consumer models.IOType
		want     bool
	}{
		{models.IOTypeText, models.IOTypeDocument, true},
		{models.IOTypeText, models.IOTypeCode, false},
		{models.IOTypeCode, models.IOTypeText, true},
		{models.IOTypeDocument, models.IOTypeText, true},
		{models.IOTypeData, models.IOTypeText, true},
		{models.IOTypeData, models.IOTypeDocument, false},
		{models.IOTypeImage, models.IOTypeText, false},
		{models.IOTypePresentation, models.IOTypeDocument, true},
		{models.IOTypePresentation, models.IOTypeText, false},
		{models.IOTypeAnalysis, models.IOTypeText, true},
		{models.IOTypeAnalysis, models.IOTypeDocument, true},
		{models.IOTypeText, models.IOTypeAnalysis, false},
		{"video", models.IOTypeText, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.producer)+"->"+string(tt.consumer), func(t *testing.T) {
			assert.Equal(t, tt.want, IsCompatible(tt.producer, tt.consumer))
		})
	}
}

func TestIsCompatible_Asymmetric(t *testing.T) {
	assert.True(t, IsCompatible(models.IOTypeAnalysis, models.IOTypeText))
	assert.False(t, IsCompatible(models.IOTypeText, models.IOTypeAnalysis))
}

func TestAccepts(t *testing.T) {
	consumers := Accepts(models.IOTypeImage)
	assert.Equal(t, []models.IOType{models.IOTypeImage, models.IOTypeAny}, consumers)

	consumers[0] = models.IOTypeText
	assert.False(t, IsCompatible(models.IOTypeImage, models.IOTypeText))

	assert.Len(t, Accepts(models.IOTypeAny), len(models.IOTypes()))
	assert.Nil(t, Accepts("video"))
}
