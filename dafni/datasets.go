package dafni

import (
	"time"

	shape "github.com/SimonDaKappa/go-shape"
)

// Dataset is an entry of the dataset catalogue search.
type Dataset struct {
	AssetID        string
	DatasetID      string
	VersionID      string
	MetadataID     string
	Description    string
	Formats        []string
	ModifiedDate   time.Time
	Source         string
	Subject        string
	Title          string
	DateRangeStart *time.Time
	DateRangeEnd   *time.Time
}

var DatasetSchema = shape.MustSchema[Dataset]("Dataset",
	shape.Required("AssetID", shape.P("id", "asset_id"), shape.Cast(shape.CastString)),
	shape.Required("DatasetID", shape.P("id", "dataset_uuid"), shape.Cast(shape.CastString)),
	shape.Required("VersionID", shape.P("id", "version_uuid"), shape.Cast(shape.CastString)),
	shape.Required("MetadataID", shape.P("id", "metadata_uuid"), shape.Cast(shape.CastString)),
	shape.Required("Description", shape.P("description"), shape.Cast(shape.CastString)),
	shape.Required("Formats", shape.P("formats"), shape.Identity()),
	shape.Required("ModifiedDate", shape.P("modified_date"), shape.Cast(shape.CastTime)),
	shape.Required("Source", shape.P("source"), shape.Cast(shape.CastString)),
	shape.Required("Subject", shape.P("subject"), shape.Cast(shape.CastString)),
	shape.Required("Title", shape.P("title"), shape.Cast(shape.CastString)),
	shape.Optional("DateRangeStart", shape.P("date_range", "begin"), shape.Cast(shape.CastTime)),
	shape.Optional("DateRangeEnd", shape.P("date_range", "end"), shape.Cast(shape.CastTime)),
)

// DataFile is a file attached to a dataset version. Size is already
// formatted for display and Format is the display name of the media type.
type DataFile struct {
	Name        string
	Size        string
	Format      string
	DownloadURL string
}

var DataFileSchema = shape.MustSchema[DataFile]("DataFile",
	shape.Required("Name", shape.P("spdx:fileName"), shape.Cast(shape.CastString)),
	shape.Required("Size", shape.P("dcat:byteSize"), fileSize),
	shape.WithDefault("Format", shape.P("dcat:mediaType"), fileFormat, UnknownFormat),
	shape.Optional("DownloadURL", shape.P("dcat:downloadURL"), shape.Cast(shape.CastString)),
)

type Creator struct {
	Type string `shape:"path:'@type' cast:'string'"`
	Name string `shape:"path:'foaf:name' cast:'string'"`
	ID   string `shape:"path:'@id,optional' cast:'string'"`
}

type Contact struct {
	Type  string `shape:"path:'@type' cast:'string'"`
	Name  string `shape:"path:'vcard:fn' cast:'string'"`
	Email string `shape:"path:'vcard:hasEmail' cast:'string'"`
}

type Location struct {
	Type  string `shape:"path:'@type,optional' cast:'string'"`
	ID    string `shape:"path:'@id,optional' cast:'string'"`
	Label string `shape:"path:'rdfs:label,optional' cast:'string'"`
}

type Publisher struct {
	Type string `shape:"path:'@type,optional' cast:'string'"`
	ID   string `shape:"path:'@id,optional' cast:'string'"`
	Name string `shape:"path:'foaf:name,optional' cast:'string'"`
}

type Standard struct {
	Type  string `shape:"path:'@type,optional' cast:'string'"`
	ID    string `shape:"path:'@id,optional' cast:'string'"`
	Label string `shape:"path:'label,optional' cast:'string'"`
}

var (
	CreatorSchema   = shape.MustSchemaFromTags[Creator]("Creator")
	ContactSchema   = shape.MustSchemaFromTags[Contact]("Contact")
	LocationSchema  = shape.MustSchemaFromTags[Location]("Location")
	PublisherSchema = shape.MustSchemaFromTags[Publisher]("Publisher")
	StandardSchema  = shape.MustSchemaFromTags[Standard]("Standard")
)

// DatasetMetadata is the DCAT metadata of one dataset version.
type DatasetMetadata struct {
	shape.Raw

	Title           string
	Description     string
	Subject         string
	Created         time.Time
	Creators        []Creator
	Contact         Contact
	Identifiers     []string
	Location        Location
	Keywords        []string
	Themes          []string
	Publisher       Publisher
	Issued          time.Time
	Language        string
	Standard        Standard
	AssetID         string
	DatasetID       string
	VersionID       string
	MetadataID      string
	Files           []DataFile
	Rights          string
	UpdateFrequency string
	StartDate       *time.Time
	EndDate         *time.Time
}

var DatasetMetadataSchema = shape.MustSchema[DatasetMetadata]("DatasetMetadata",
	shape.Required("Title", shape.P("dct:title"), shape.Cast(shape.CastString)),
	shape.Required("Description", shape.P("dct:description"), shape.Cast(shape.CastString)),
	shape.Required("Subject", shape.P("dct:subject"), shape.Cast(shape.CastString)),
	shape.Required("Created", shape.P("dct:created"), shape.Cast(shape.CastTime)),
	shape.Required("Creators", shape.P("dct:creator"), shape.NestedList(CreatorSchema)),
	shape.Required("Contact", shape.P("dcat:contactPoint"), shape.Nested(ContactSchema)),
	shape.Required("Identifiers", shape.P("dct:identifier"), shape.Identity()),
	shape.Required("Location", shape.P("dct:spatial"), shape.Nested(LocationSchema)),
	shape.Required("Keywords", shape.P("dcat:keyword"), shape.Identity()),
	shape.Required("Themes", shape.P("dcat:theme"), shape.Identity()),
	shape.Required("Publisher", shape.P("dct:publisher"), shape.Nested(PublisherSchema)),
	shape.Required("Issued", shape.P("dct:issued"), shape.Cast(shape.CastTime)),
	shape.Required("Language", shape.P("dct:language"), shape.Cast(shape.CastString)),
	shape.Required("Standard", shape.P("dct:conformsTo"), shape.Nested(StandardSchema)),
	shape.Required("AssetID", shape.P("@id", "asset_id"), shape.Cast(shape.CastString)),
	shape.Required("DatasetID", shape.P("@id", "dataset_uuid"), shape.Cast(shape.CastString)),
	shape.Required("VersionID", shape.P("@id", "version_uuid"), shape.Cast(shape.CastString)),
	shape.Required("MetadataID", shape.P("@id", "metadata_uuid"), shape.Cast(shape.CastString)),
	shape.Required("Files", shape.P("dcat:distribution"), shape.NestedList(DataFileSchema)),
	shape.Optional("Rights", shape.P("dct:rights"), shape.Cast(shape.CastString)),
	shape.Optional("UpdateFrequency", shape.P("dct:accrualPeriodicity"), shape.Cast(shape.CastString)),
	shape.Optional("StartDate", shape.P("dct:PeriodOfTime", "time:hasBeginning"), shape.Cast(shape.CastTime)),
	shape.Optional("EndDate", shape.P("dct:PeriodOfTime", "time:hasEnd"), shape.Cast(shape.CastTime)),
)

// ParseDatasets reads the "metadata" array of a catalogue search.
func ParseDatasets(docs []shape.Value) ([]Dataset, error) {
	return shape.ParseMany(DatasetSchema, docs)
}

func ParseDatasetMetadata(doc shape.Value) (DatasetMetadata, error) {
	return shape.ParseOne(DatasetMetadataSchema, doc)
}
