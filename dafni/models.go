package dafni

import (
	"time"

	shape "github.com/SimonDaKappa/go-shape"
)

// ModelStatusStrings maps the single-letter model status codes.
var ModelStatusStrings = map[string]string{
	"P": "Pending",
	"F": "Failed",
	"L": "Live",
	"S": "Superseded",
	"D": "Deprecated",
}

type ModelMetadata struct {
	DisplayName string `shape:"path:'display_name' cast:'string'"`
	Name        string `shape:"path:'name' cast:'string'"`
	Summary     string `shape:"path:'summary' cast:'string'"`
	Status      string `shape:"path:'status' cast:'string'"`
	Description string `shape:"path:'description,optional' cast:'string'"`
	Publisher   string `shape:"path:'publisher,optional' cast:'string'"`
	SourceCode  string `shape:"path:'source_code,optional' cast:'string'"`
}

// StatusString spells out the status code, "Unknown" for unlisted codes.
func (m ModelMetadata) StatusString() string {
	if s, ok := ModelStatusStrings[m.Status]; ok {
		return s
	}
	return "Unknown"
}

// ModelParameter is a parameter a model accepts. Default, Min and Max keep
// the document's value since their type depends on Type.
type ModelParameter struct {
	Name        string
	Type        string
	Title       string
	Required    bool
	Description string
	Default     shape.Value
	Min         shape.Value
	Max         shape.Value
}

type ModelDataslot struct {
	Name        string
	Path        string
	Required    bool
	Defaults    []string
	Description string
}

type ModelInputs struct {
	Parameters []ModelParameter
	Dataslots  []ModelDataslot
}

type ModelOutputDataset struct {
	Name        string `shape:"path:'name,optional' cast:'string'"`
	Type        string `shape:"path:'type,optional' cast:'string'"`
	Description string `shape:"path:'description,optional' cast:'string'"`
}

type ModelOutputs struct {
	Datasets []ModelOutputDataset `shape:"path:'datasets' recurse:'list'"`
}

// ModelSpec is the ingested specification of a model. ImageURL is empty
// when the ingest failed.
type ModelSpec struct {
	ImageURL string
	Inputs   *ModelInputs
	Outputs  *ModelOutputs
}

type ModelVersion struct {
	ID              string    `shape:"path:'id' cast:'string'"`
	VersionMessage  string    `shape:"path:'version_message' cast:'string'"`
	VersionTags     []string  `shape:"path:'version_tags'"`
	PublicationDate time.Time `shape:"path:'publication_date' cast:'time'"`
}

// Model is returned both by the model listing and by the single model
// endpoint. The listing puts the metadata fields at the top level instead
// of under "metadata"; Metadata hides the difference.
type Model struct {
	shape.Raw

	ID                  string
	Kind                string
	OwnerID             string
	ParentID            string
	CreationDate        time.Time
	PublicationDate     time.Time
	VersionMessage      string
	VersionTags         []string
	VersionHistory      []ModelVersion
	Auth                Auth
	IngestCompletedDate *time.Time
	APIVersion          string
	Type                string
	Spec                *ModelSpec

	MetadataDetail *ModelMetadata

	DisplayName string
	Name        string
	Summary     string
	Status      string
}

// Metadata returns the model's metadata from whichever endpoint shape the
// record was parsed from.
func (m *Model) Metadata() ModelMetadata {
	if m.MetadataDetail != nil {
		return *m.MetadataDetail
	}
	return ModelMetadata{
		DisplayName: m.DisplayName,
		Name:        m.Name,
		Summary:     m.Summary,
		Status:      m.Status,
	}
}

// VersionDetails is a one-line summary of the model version.
func (m *Model) VersionDetails() string {
	return "Name: " + m.Metadata().DisplayName +
		"  |  ID: " + m.ID +
		"  |  Date: " + FormatDate(&m.PublicationDate, true)
}

var (
	ModelMetadataSchema      = shape.MustSchemaFromTags[ModelMetadata]("ModelMetadata")
	ModelOutputsSchema       = shape.MustSchemaFromTags[ModelOutputs]("ModelOutputs")
	ModelOutputDatasetSchema = shape.MustSchemaFromTags[ModelOutputDataset]("ModelOutputDataset")
	ModelVersionSchema       = shape.MustSchemaFromTags[ModelVersion]("ModelVersion")

	ModelParameterSchema = shape.MustSchema[ModelParameter]("ModelParameter",
		shape.Required("Name", shape.P("name"), shape.Cast(shape.CastString)),
		shape.Required("Type", shape.P("type"), shape.Cast(shape.CastString)),
		shape.Required("Title", shape.P("title"), shape.Identity()),
		shape.Required("Required", shape.P("required"), shape.Identity()),
		shape.Required("Description", shape.P("description"), shape.Identity()),
		shape.Optional("Default", shape.P("default"), shape.Identity()),
		shape.Optional("Min", shape.P("min"), shape.Identity()),
		shape.Optional("Max", shape.P("max"), shape.Identity()),
	)

	ModelDataslotSchema = shape.MustSchema[ModelDataslot]("ModelDataslot",
		shape.Required("Name", shape.P("name"), shape.Cast(shape.CastString)),
		shape.Required("Path", shape.P("path"), shape.Cast(shape.CastString)),
		shape.Required("Required", shape.P("required"), shape.Identity()),
		shape.WithDefault("Defaults", shape.P("default"), shape.Identity(), []string{}),
		shape.Optional("Description", shape.P("description"), shape.Cast(shape.CastString)),
	)

	ModelInputsSchema = shape.MustSchema[ModelInputs]("ModelInputs",
		shape.Required("Parameters", shape.P("parameters"), shape.NestedList(ModelParameterSchema)),
		shape.WithDefault("Dataslots", shape.P("dataslots"), shape.NestedList(ModelDataslotSchema), []ModelDataslot{}),
	)

	ModelSpecSchema = shape.MustSchema[ModelSpec]("ModelSpec",
		shape.Optional("ImageURL", shape.P("image"), shape.Cast(shape.CastString)),
		shape.Optional("Inputs", shape.P("inputs"), shape.Nested(ModelInputsSchema)),
		shape.Optional("Outputs", shape.P("outputs"), shape.Nested(ModelOutputsSchema)),
	)

	ModelSchema = shape.MustSchema[Model]("Model",
		shape.Required("ID", shape.P("id"), shape.Cast(shape.CastString)),
		shape.Required("Kind", shape.P("kind"), shape.Cast(shape.CastString)),
		shape.Required("OwnerID", shape.P("owner"), shape.Cast(shape.CastString)),
		shape.Required("ParentID", shape.P("parent"), shape.Cast(shape.CastString)),
		shape.Required("CreationDate", shape.P("creation_date"), shape.Cast(shape.CastTime)),
		shape.Required("PublicationDate", shape.P("publication_date"), shape.Cast(shape.CastTime)),
		shape.Required("VersionMessage", shape.P("version_message"), shape.Cast(shape.CastString)),
		shape.Required("VersionTags", shape.P("version_tags"), shape.Identity()),
		shape.Required("VersionHistory", shape.P("version_history"), shape.NestedList(ModelVersionSchema)),
		shape.Required("Auth", shape.P("auth"), shape.Nested(AuthSchema)),
		shape.Optional("IngestCompletedDate", shape.P("ingest_completed_date"), shape.Cast(shape.CastTime)),
		shape.Optional("MetadataDetail", shape.P("metadata"), shape.Nested(ModelMetadataSchema)),
		shape.Optional("APIVersion", shape.P("api_version"), shape.Cast(shape.CastString)),
		shape.Optional("Type", shape.P("type"), shape.Cast(shape.CastString)),
		shape.Optional("Spec", shape.P("spec"), shape.Nested(ModelSpecSchema)),
		shape.Optional("DisplayName", shape.P("display_name"), shape.Cast(shape.CastString)),
		shape.Optional("Name", shape.P("name"), shape.Cast(shape.CastString)),
		shape.Optional("Summary", shape.P("summary"), shape.Cast(shape.CastString)),
		shape.Optional("Status", shape.P("status"), shape.Cast(shape.CastString)),
	)
)

// ParseModels reads the model listing.
func ParseModels(docs []shape.Value) ([]Model, error) {
	return shape.ParseMany(ModelSchema, docs)
}

// ParseModel reads a single model.
func ParseModel(doc shape.Value) (Model, error) {
	return shape.ParseOne(ModelSchema, doc)
}
