package vessel

// Field names one attribute in the canonical vocabulary. The string form is
// "category.name" and doubles as the JSON key of persisted records.
type Field string

// Canonical fields. Anything a source page labels that does not map onto one
// of these lands in the record's Other bucket instead of being dropped.
const (
	FieldIMO      Field = "identification.imo"
	FieldMMSI     Field = "identification.mmsi"
	FieldName     Field = "identification.name"
	FieldCallSign Field = "identification.call_sign"
	FieldFlag     Field = "identification.flag"
	FieldENI      Field = "identification.eni"

	FieldType         Field = "specifications.type"
	FieldYearBuilt    Field = "specifications.year_built"
	FieldGrossTonnage Field = "specifications.gross_tonnage"
	FieldDeadweight   Field = "specifications.deadweight"
	FieldNetTonnage   Field = "specifications.net_tonnage"
	FieldStatus       Field = "specifications.status"

	FieldLength  Field = "dimensions.length"
	FieldBreadth Field = "dimensions.breadth"
	FieldDraft   Field = "dimensions.draft"
	FieldDepth   Field = "dimensions.depth"

	FieldEngineType  Field = "engine.type"
	FieldEngineModel Field = "engine.model"
	FieldEnginePower Field = "engine.power"
	FieldSpeed       Field = "engine.speed"

	FieldOwner    Field = "ownership.owner"
	FieldManager  Field = "ownership.manager"
	FieldOperator Field = "ownership.operator"
	FieldBuilder  Field = "ownership.builder"
	FieldHomePort Field = "ownership.home_port"

	FieldDescription Field = "other.description"
)

// Fields lists the canonical vocabulary in a stable order, used for prompt
// construction and the merged dataset header.
func Fields() []Field {
	return []Field{
		FieldIMO, FieldMMSI, FieldName, FieldCallSign, FieldFlag, FieldENI,
		FieldType, FieldYearBuilt, FieldGrossTonnage, FieldDeadweight,
		FieldNetTonnage, FieldStatus,
		FieldLength, FieldBreadth, FieldDraft, FieldDepth,
		FieldEngineType, FieldEngineModel, FieldEnginePower, FieldSpeed,
		FieldOwner, FieldManager, FieldOperator, FieldBuilder, FieldHomePort,
		FieldDescription,
	}
}
