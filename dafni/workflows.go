package dafni

import (
	"time"

	shape "github.com/SimonDaKappa/go-shape"
)

// WorkflowMetadata holds the descriptive fields of a workflow. Publisher
// and Description are only returned by the single workflow endpoint.
type WorkflowMetadata struct {
	DisplayName string `shape:"path:'display_name' cast:'string'"`
	Name        string `shape:"path:'name' cast:'string'"`
	Summary     string `shape:"path:'summary' cast:'string'"`
	PublisherID string `shape:"path:'publisher,optional' cast:'string'"`
	Description string `shape:"path:'description,optional' cast:'string'"`
}

type WorkflowVersion struct {
	ID              string    `shape:"path:'id' cast:'string'"`
	VersionMessage  string    `shape:"path:'version_message' cast:'string'"`
	VersionTags     []string  `shape:"path:'version_tags'"`
	PublicationDate time.Time `shape:"path:'publication_date' cast:'time'"`
}

///////////////////////////////////////////////////////////////////////////////
// Specification
///////////////////////////////////////////////////////////////////////////////

// WorkflowSpecificationStep is one step of a workflow. Metadata is only
// set for publisher steps and ModelVersion for model steps.
type WorkflowSpecificationStep struct {
	Dependencies []string    `shape:"path:'dependencies'"`
	Kind         string      `shape:"path:'kind' cast:'string'"`
	Name         string      `shape:"path:'name' cast:'string'"`
	Metadata     shape.Value `shape:"path:'metadata,optional'"`
	ModelVersion string      `shape:"path:'model_version,optional' cast:'string'"`
}

// WorkflowSpecification maps step IDs to steps.
type WorkflowSpecification struct {
	Steps map[string]WorkflowSpecificationStep `shape:"path:'steps' recurse:'map'"`
}

///////////////////////////////////////////////////////////////////////////////
// Parameter sets
///////////////////////////////////////////////////////////////////////////////

type WorkflowParameterSetMetadata struct {
	Description       string `shape:"path:'description' cast:'string'"`
	DisplayName       string `shape:"path:'display_name' cast:'string'"`
	Name              string `shape:"path:'name' cast:'string'"`
	Publisher         string `shape:"path:'publisher' cast:'string'"`
	WorkflowVersionID string `shape:"path:'workflow_version' cast:'string'"`
}

type WorkflowParameterSetSpecDataslot struct {
	Datasets []string `shape:"path:'datasets'"`
	Name     string   `shape:"path:'name' cast:'string'"`
	Path     string   `shape:"path:'path' cast:'string'"`
}

type WorkflowParameterSetSpecParameter struct {
	Name  string      `shape:"path:'name' cast:'string'"`
	Value shape.Value `shape:"path:'value,optional'"`
}

type WorkflowParameterSetSpecStep struct {
	Dataslots  []WorkflowParameterSetSpecDataslot  `shape:"path:'dataslots' recurse:'list'"`
	Kind       string                              `shape:"path:'kind' cast:'string'"`
	Parameters []WorkflowParameterSetSpecParameter `shape:"path:'parameters' recurse:'list'"`
}

// WorkflowParameterSet is a saved set of inputs for a workflow. Spec maps
// step IDs to the values given for that step.
type WorkflowParameterSet struct {
	ID              string                                  `shape:"path:'id' cast:'string'"`
	OwnerID         string                                  `shape:"path:'owner' cast:'string'"`
	CreationDate    time.Time                               `shape:"path:'creation_date' cast:'time'"`
	PublicationDate time.Time                               `shape:"path:'publication_date' cast:'time'"`
	Kind            string                                  `shape:"path:'kind' cast:'string'"`
	APIVersion      string                                  `shape:"path:'api_version' cast:'string'"`
	Spec            map[string]WorkflowParameterSetSpecStep `shape:"path:'spec' recurse:'map'"`
	Metadata        WorkflowParameterSetMetadata            `shape:"path:'metadata' recurse:'one'"`
}

///////////////////////////////////////////////////////////////////////////////
// Instances
///////////////////////////////////////////////////////////////////////////////

type WorkflowInstanceStepStatus struct {
	Status     string     `shape:"path:'status' cast:'string'"`
	StartedAt  *time.Time `shape:"path:'started_at,optional' cast:'time'"`
	FinishedAt *time.Time `shape:"path:'finished_at,optional' cast:'time'"`
}

type WorkflowInstanceProducedAsset struct {
	DatasetID  string `shape:"path:'dataset_id' cast:'string'"`
	MetadataID string `shape:"path:'metadata_id' cast:'string'"`
	VersionID  string `shape:"path:'version_id' cast:'string'"`
	Kind       string `shape:"path:'kind' cast:'string'"`
}

type WorkflowInstanceListParameterSet struct {
	ID          string `shape:"path:'id' cast:'string'"`
	DisplayName string `shape:"path:'display_name' cast:'string'"`
}

type WorkflowInstanceListWorkflowVersion struct {
	ID             string `shape:"path:'id' cast:'string'"`
	VersionMessage string `shape:"path:'version_message' cast:'string'"`
}

// WorkflowInstanceList is an instance as listed within a workflow.
type WorkflowInstanceList struct {
	InstanceID      string                              `shape:"path:'instance_id' cast:'string'"`
	SubmissionTime  time.Time                           `shape:"path:'submission_time' cast:'time'"`
	OverallStatus   string                              `shape:"path:'overall_status' cast:'string'"`
	ParameterSet    WorkflowInstanceListParameterSet    `shape:"path:'parameter_set' recurse:'one'"`
	WorkflowVersion WorkflowInstanceListWorkflowVersion `shape:"path:'workflow_version' recurse:'one'"`
	FinishedTime    *time.Time                          `shape:"path:'finished_time,optional' cast:'time'"`
}

// WorkflowInstanceWorkflowVersion is the workflow version an instance ran.
type WorkflowInstanceWorkflowVersion struct {
	ID              string           `shape:"path:'id' cast:'string'"`
	Metadata        WorkflowMetadata `shape:"path:'metadata' recurse:'one'"`
	APIVersion      string           `shape:"path:'api_version' cast:'string'"`
	Kind            string           `shape:"path:'kind' cast:'string'"`
	CreationDate    time.Time        `shape:"path:'creation_date' cast:'time'"`
	PublicationDate time.Time        `shape:"path:'publication_date' cast:'time'"`
	OwnerID         string           `shape:"path:'owner' cast:'string'"`
	VersionTags     []string         `shape:"path:'version_tags'"`
	VersionMessage  string           `shape:"path:'version_message' cast:'string'"`
	ParentID        string           `shape:"path:'parent' cast:'string'"`
	Spec            shape.Value      `shape:"path:'spec'"`
}

// WorkflowInstance is a single execution of a workflow.
type WorkflowInstance struct {
	shape.Raw

	Auth            Auth
	InstanceID      string
	SubmissionTime  time.Time
	OverallStatus   string
	StepStatuses    map[string]WorkflowInstanceStepStatus
	ProducedAssets  map[string]WorkflowInstanceProducedAsset
	ParameterSet    WorkflowParameterSet
	WorkflowVersion WorkflowInstanceWorkflowVersion
	FinishedTime    *time.Time
}

///////////////////////////////////////////////////////////////////////////////
// Workflow
///////////////////////////////////////////////////////////////////////////////

// Workflow is returned by both the workflow listing and the single
// workflow endpoint. As with Model, the listing keeps the metadata fields
// at the top level.
type Workflow struct {
	shape.Raw

	ID              string
	VersionHistory  []WorkflowVersion
	Auth            Auth
	Kind            string
	CreationDate    time.Time
	PublicationDate time.Time
	OwnerID         string
	VersionTags     []string
	VersionMessage  string
	ParentID        string
	Instances       []WorkflowInstanceList
	ParameterSets   []WorkflowParameterSet
	APIVersion      string
	Spec            *WorkflowSpecification

	MetadataDetail *WorkflowMetadata

	DisplayName string
	Name        string
	Summary     string
}

func (w *Workflow) Metadata() WorkflowMetadata {
	if w.MetadataDetail != nil {
		return *w.MetadataDetail
	}
	return WorkflowMetadata{
		DisplayName: w.DisplayName,
		Name:        w.Name,
		Summary:     w.Summary,
	}
}

var (
	WorkflowMetadataSchema      = shape.MustSchemaFromTags[WorkflowMetadata]("WorkflowMetadata")
	WorkflowVersionSchema       = shape.MustSchemaFromTags[WorkflowVersion]("WorkflowVersion")
	WorkflowSpecificationSchema = shape.MustSchemaFromTags[WorkflowSpecification]("WorkflowSpecification")
	WorkflowParameterSetSchema  = shape.MustSchemaFromTags[WorkflowParameterSet]("WorkflowParameterSet")
	WorkflowInstanceListSchema  = shape.MustSchemaFromTags[WorkflowInstanceList]("WorkflowInstanceList")

	WorkflowInstanceStepStatusSchema      = shape.MustSchemaFromTags[WorkflowInstanceStepStatus]("WorkflowInstanceStepStatus")
	WorkflowInstanceProducedAssetSchema   = shape.MustSchemaFromTags[WorkflowInstanceProducedAsset]("WorkflowInstanceProducedAsset")
	WorkflowInstanceWorkflowVersionSchema = shape.MustSchemaFromTags[WorkflowInstanceWorkflowVersion]("WorkflowInstanceWorkflowVersion")

	WorkflowInstanceSchema = shape.MustSchema[WorkflowInstance]("WorkflowInstance",
		shape.Required("Auth", shape.P("auth"), shape.Nested(AuthSchema)),
		shape.Required("InstanceID", shape.P("instance_id"), shape.Cast(shape.CastString)),
		shape.Required("SubmissionTime", shape.P("submission_time"), shape.Cast(shape.CastTime)),
		shape.Required("OverallStatus", shape.P("overall_status"), shape.Cast(shape.CastString)),
		shape.Required("StepStatuses", shape.P("step_status"), shape.NestedMap(WorkflowInstanceStepStatusSchema)),
		shape.Required("ProducedAssets", shape.P("produced_assets"), shape.NestedMap(WorkflowInstanceProducedAssetSchema)),
		shape.Required("ParameterSet", shape.P("parameter_set"), shape.Nested(WorkflowParameterSetSchema)),
		shape.Required("WorkflowVersion", shape.P("workflow_version"), shape.Nested(WorkflowInstanceWorkflowVersionSchema)),
		shape.Optional("FinishedTime", shape.P("finished_time"), shape.Cast(shape.CastTime)),
	)

	WorkflowSchema = shape.MustSchema[Workflow]("Workflow",
		shape.Required("ID", shape.P("id"), shape.Cast(shape.CastString)),
		shape.Required("VersionHistory", shape.P("version_history"), shape.NestedList(WorkflowVersionSchema)),
		shape.Required("Auth", shape.P("auth"), shape.Nested(AuthSchema)),
		shape.Required("Kind", shape.P("kind"), shape.Cast(shape.CastString)),
		shape.Required("CreationDate", shape.P("creation_date"), shape.Cast(shape.CastTime)),
		shape.Required("PublicationDate", shape.P("publication_date"), shape.Cast(shape.CastTime)),
		shape.Required("OwnerID", shape.P("owner"), shape.Cast(shape.CastString)),
		shape.Required("VersionTags", shape.P("version_tags"), shape.Identity()),
		shape.Required("VersionMessage", shape.P("version_message"), shape.Cast(shape.CastString)),
		shape.Required("ParentID", shape.P("parent"), shape.Cast(shape.CastString)),
		shape.Optional("Instances", shape.P("instances"), shape.NestedList(WorkflowInstanceListSchema)),
		shape.Optional("ParameterSets", shape.P("parameter_sets"), shape.NestedList(WorkflowParameterSetSchema)),
		shape.Optional("APIVersion", shape.P("api_version"), shape.Cast(shape.CastString)),
		shape.Optional("Spec", shape.P("spec"), shape.Nested(WorkflowSpecificationSchema)),
		shape.Optional("MetadataDetail", shape.P("metadata"), shape.Nested(WorkflowMetadataSchema)),
		shape.Optional("DisplayName", shape.P("display_name"), shape.Cast(shape.CastString)),
		shape.Optional("Name", shape.P("name"), shape.Cast(shape.CastString)),
		shape.Optional("Summary", shape.P("summary"), shape.Cast(shape.CastString)),
	)
)

func ParseWorkflows(docs []shape.Value) ([]Workflow, error) {
	return shape.ParseMany(WorkflowSchema, docs)
}

func ParseWorkflow(doc shape.Value) (Workflow, error) {
	return shape.ParseOne(WorkflowSchema, doc)
}

func ParseWorkflowInstance(doc shape.Value) (WorkflowInstance, error) {
	return shape.ParseOne(WorkflowInstanceSchema, doc)
}
