package model

// FieldType is the closed set of field kinds, mirroring the rows
// seeded into the field_type reference table.
type FieldType int

const (
	TypeText FieldType = iota + 1
	TypeTextarea
	TypeNumber
	TypeDate
	TypeCheckbox
	TypeSingleChoice
	TypeMultiChoice
)

var fieldTypeNames = map[FieldType]string{
	TypeText:         "text",
	TypeTextarea:     "textarea",
	TypeNumber:       "number",
	TypeDate:         "date",
	TypeCheckbox:     "checkbox",
	TypeSingleChoice: "single_choice",
	TypeMultiChoice:  "multi_choice",
}

// hasOptions marks the types that carry a fixed choice set.
var hasOptions = map[FieldType]bool{
	TypeSingleChoice: true,
	TypeMultiChoice:  true,
}

func (t FieldType) Valid() bool {
	_, ok := fieldTypeNames[t]
	return ok
}

func (t FieldType) RequiresOptions() bool {
	return hasOptions[t]
}

func (t FieldType) String() string {
	return fieldTypeNames[t]
}

func FieldTypes() []FieldType {
	return []FieldType{
		TypeText, TypeTextarea, TypeNumber, TypeDate,
		TypeCheckbox, TypeSingleChoice, TypeMultiChoice,
	}
}
