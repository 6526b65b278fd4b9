package shape

import "reflect"

// constants for the struct tag read by SchemaFromTags
const (
	TagName                 = "shape"
	PathSubTag              = "path"
	DefaultSubTag           = "default"
	CastSubTag              = "cast"
	RecurseSubTag           = "recurse"
	SubTagScopeDelimiter    = byte('\'')
	SubTagKeyValueDelimiter = ":"
	PathKeyDelimiter        = "/"
	PathModifierDelimiter   = ","
)

// constants for path modifiers
const (
	RequiredPathModifier = "required"
	OptionalPathModifier = "optional"
)

// constants for recurse subtag values
const (
	RecurseOne  = "one"
	RecurseList = "list"
	RecurseMap  = "map"
)

// Mime Type constants for content types.
const (
	ContentTypeApplicationJSON = "application/json"
)

// MetricsNamespace prefixes every metric exported by Metrics.
const MetricsNamespace = "shape"

// reflect.TypeOf constants for type checks
var (
	StringType = reflect.TypeOf("")
)
