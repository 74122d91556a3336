package extract

import "fmt"

// SchemaVariant selects the instruction template and target JSON shape
// for structured extraction. The set is closed; selection happens once
// per session.
type SchemaVariant int

const (
	SchemaDefault SchemaVariant = iota
	SchemaHighEntropyAlloy
	SchemaPerovskite
)

var variantNames = map[SchemaVariant]string{
	SchemaDefault:          "default",
	SchemaHighEntropyAlloy: "high-entropy-alloy",
	SchemaPerovskite:       "perovskite",
}

func (v SchemaVariant) String() string {
	return variantNames[v]
}

// ParseSchemaVariant maps a selector value to its variant.
func ParseSchemaVariant(name string) (SchemaVariant, error) {
	for v, n := range variantNames {
		if n == name {
			return v, nil
		}
	}
	return SchemaDefault, fmt.Errorf("unknown schema variant: %q", name)
}

// Variants lists the selectable variants in display order.
func Variants() []SchemaVariant {
	return []SchemaVariant{SchemaDefault, SchemaHighEntropyAlloy, SchemaPerovskite}
}

const schemaDefault = `{
  "composition": "",
  "property": "",
  "value": "",
  "unit": "",
  "measurement_condition": ""
}`

// the perovskite variant reuses the alloy shape
const schemaHEA = `{
  "composition": [
    {
      "chemical_composition": "",
      "element": "",
      "percentage": ""
    }
  ],
  "phase_structure": "",
  "properties_measured": [
    {
      "property": "",
      "value": "",
      "unit": ""
    }
  ],
  "measurement_conditions": "",
  "treatment": ""
}`

const (
	instructionDefault = `Below is a chunk of text from a scientific literature. You are a helpful assistant for researchers needing to extract data for their analyses. Your task is to fill out the provided empty JSON schema with relevant information extracted from the text. Make sure to fill out a JSON for each materials present in the text. If data for a specific material is absent, put 'NONE' in the corresponding field. Fill out multiple JSON if multiple material is present.

Paragraph: `

	instructionHEA = `Below is an excerpt from a scientific paper discussing High-Entropy Alloys (HEAs). You are a helpful assistant for researchers needing to extract data for their analyses. Your task is to fill out the provided empty JSON schema with relevant information extracted from the text. Make sure to fill out a JSON for each materials present in the text. Please focus on the composition of the alloys, phase structures, properties measured, conditions under which these properties were measured, and any treatment processes applied. If data for a specific material is absent, put 'NONE' in the corresponding field. Fill out multiple JSON if multiple material is present.

Paragraph: `

	instructionPerovskite = `Below is a chunk of text from a scientific literature discussing Perovskite. You are a helpful assistant for researchers needing to extract data for their analyses. Your task is to fill out the provided empty JSON schema with relevant information extracted from the text. Make sure to fill out a JSON for each materials present in the text. If data for a specific material is absent, put 'NONE' in the corresponding field. Fill out multiple JSON if multiple material is present.

Paragraph: `
)

// Instruction returns the domain-specific system instruction prefix.
func (v SchemaVariant) Instruction() string {
	switch v {
	case SchemaHighEntropyAlloy:
		return instructionHEA
	case SchemaPerovskite:
		return instructionPerovskite
	default:
		return instructionDefault
	}
}

// Schema returns the empty JSON schema string sent with each request.
// The model is asked, not forced, to follow it; output is never validated.
func (v SchemaVariant) Schema() string {
	switch v {
	case SchemaHighEntropyAlloy, SchemaPerovskite:
		return schemaHEA
	default:
		return schemaDefault
	}
}
