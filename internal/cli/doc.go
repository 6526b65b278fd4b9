// Package cli implements the shape command line tool.
//
// # Output
//
// Output formats results in one of two modes:
//   - tables (text/tabwriter), the default
//   - indented JSON, with --json
//
// Records go to stdout, messages and metrics to stderr, so that
// `shape decode --json ... | jq .` works.
//
// # Commands
//
//   - decode: read a JSON or YAML document and parse it with a registered
//     schema, as one record, a list (--list) or a keyed map (--keyed)
//   - types: list the registered record types
//
// Commands are built by factory functions (NewDecodeCmd, NewTypesCmd) taking
// an Env whose closures create the registry and Output after the persistent
// flags are parsed.
package cli
