// Package compat decides whether a producer port may feed a consumer port.
package compat

import "github.com/n3wth/skillflow/pkg/models"

var accepts = map[models.IOType][]models.IOType{
	models.IOTypeText:         {models.IOTypeText, models.IOTypeDocument, models.IOTypeAny},
	models.IOTypeCode:         {models.IOTypeCode, models.IOTypeText, models.IOTypeAny},
	models.IOTypeDocument:     {models.IOTypeDocument, models.IOTypeText, models.IOTypeAny},
	models.IOTypeData:         {models.IOTypeData, models.IOTypeText, models.IOTypeAny},
	models.IOTypeImage:        {models.IOTypeImage, models.IOTypeAny},
	models.IOTypePresentation: {models.IOTypePresentation, models.IOTypeDocument, models.IOTypeAny},
	models.IOTypeAnalysis:     {models.IOTypeAnalysis, models.IOTypeText, models.IOTypeDocument, models.IOTypeAny},
	models.IOTypeAny:          models.IOTypes(),
}

// IsCompatible reports whether a value of the producer type may flow into a
// port of the consumer type. The wildcard absorbs everything, identical types
// always match and the table is directional. Producers missing from the table
// never match.
func IsCompatible(producer, consumer models.IOType) bool {
	if producer == models.IOTypeAny || consumer == models.IOTypeAny {
		return true
	}

	if producer == consumer {
		return true
	}

	for _, t := range accepts[producer] {
		if t == consumer {
			return true
		}
	}

	return false
}

// Accepts returns the consumer types the producer type may feed. The result
// is a fresh slice; nil for an unknown producer.
func Accepts(producer models.IOType) []models.IOType {
	consumers, ok := accepts[producer]
	if !ok {
		return nil
	}

	return append([]models.IOType(nil), consumers...)
}
