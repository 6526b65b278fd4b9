package dafni

import shape "github.com/SimonDaKappa/go-shape"

// Schemas lists the entities a caller may ask for by name, in the order
// they are registered.
func Schemas() []shape.AnySchema {
	return []shape.AnySchema{
		AuthSchema,
		ModelSchema,
		ModelMetadataSchema,
		ModelVersionSchema,
		DatasetSchema,
		DatasetMetadataSchema,
		DataFileSchema,
		WorkflowSchema,
		WorkflowInstanceSchema,
		WorkflowParameterSetSchema,
		WorkflowSpecificationSchema,
	}
}

// NewRegistry returns a registry holding Schemas. A nil d uses the package
// default Deserializer.
func NewRegistry(d *shape.Deserializer) (*shape.SchemaRegistry, error) {
	return shape.NewSchemaRegistry(shape.SchemaRegistryOpts{
		Schemas:      Schemas(),
		Deserializer: d,
	})
}
