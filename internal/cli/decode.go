package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	shape "github.com/SimonDaKappa/go-shape"
)

// Document formats accepted by --format.
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Env is what the commands need from main: the schema registry and the
// output, both built after flag parsing.
type Env struct {
	Registry func() (*shape.SchemaRegistry, error)
	Output   func() *Output
}

// NewDecodeCmd creates the decode command.
func NewDecodeCmd(env *Env) *cobra.Command {
	var typeName string
	var format string
	var path string
	var list bool
	var keyed bool
	var dump bool

	cmd := &cobra.Command{
		Use:   "decode FILE",
		Short: "Decode a JSON or YAML document into a typed record",
		Long: "Decode reads FILE (or stdin when FILE is -), decodes it and parses it with\n" +
			"the schema registered under --type. Use --list for an array of records and\n" +
			"--keyed for an object whose values are records.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list && keyed {
				return fmt.Errorf("--list and --keyed are mutually exclusive")
			}

			reg, err := env.Registry()
			if err != nil {
				return err
			}
			name, err := resolveTypeName(reg, typeName)
			if err != nil {
				return err
			}

			doc, err := readDocument(cmd.InOrStdin(), args[0], format)
			if err != nil {
				return err
			}
			if path != "" {
				doc, err = selectPath(doc, path)
				if err != nil {
					return err
				}
			}

			out := env.Output()
			switch {
			case list:
				items, ok := doc.AsArray()
				if !ok {
					return fmt.Errorf("%w: --list needs an array, got %s", shape.ErrInvalidDocument, doc.Kind())
				}
				recs, err := reg.ParseList(name, items)
				if err != nil {
					return err
				}
				if dump {
					out.Dump(recs)
					return nil
				}
				out.Records(recs)

			case keyed:
				entries, ok := doc.AsMap()
				if !ok {
					return fmt.Errorf("%w: --keyed needs an object, got %s", shape.ErrInvalidDocument, doc.Kind())
				}
				recs, err := reg.ParseKeyed(name, entries)
				if err != nil {
					return err
				}
				if dump {
					out.Dump(recs)
					return nil
				}
				out.Keyed(recs)

			default:
				rec, err := reg.Parse(name, doc)
				if err != nil {
					return err
				}
				if dump {
					out.Dump(rec)
					return nil
				}
				out.Record(rec)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Record type to parse (see 'types')")
	cmd.Flags().StringVarP(&format, "format", "f", FormatAuto, "Document format: auto, json or yaml")
	cmd.Flags().StringVar(&path, "path", "", "Slash separated key path selecting the part of the document to parse")
	cmd.Flags().BoolVar(&list, "list", false, "Parse an array of records")
	cmd.Flags().BoolVar(&keyed, "keyed", false, "Parse an object of records, keeping the keys")
	cmd.Flags().BoolVar(&dump, "dump", false, "Print the Go representation of the result")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

// NewTypesCmd creates the types command.
func NewTypesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the record types decode accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := env.Registry()
			if err != nil {
				return err
			}

			names := reg.Names()
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				schema, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{name, fmt.Sprint(len(schema.Fields())), schema.RecordType().String()})
			}

			env.Output().Print([]string{"TYPE", "FIELDS", "GO_TYPE"}, rows, names)
			return nil
		},
	}
}

// resolveTypeName matches name against the registered types ignoring case.
func resolveTypeName(reg *shape.SchemaRegistry, name string) (string, error) {
	for _, registered := range reg.Names() {
		if strings.EqualFold(registered, name) {
			return registered, nil
		}
	}
	return "", fmt.Errorf("%w: %s", shape.ErrSchemaNotFound, name)
}

func readDocument(stdin io.Reader, file, format string) (shape.Value, error) {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return shape.Value{}, fmt.Errorf("failed to read %s: %w", file, err)
	}

	if format == FormatAuto {
		format = detectFormat(file)
	}
	switch format {
	case FormatJSON:
		return shape.DecodeJSON(data)
	case FormatYAML:
		return shape.DecodeYAML(data)
	default:
		return shape.Value{}, fmt.Errorf("unknown format %q", format)
	}
}

func detectFormat(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func selectPath(doc shape.Value, path string) (shape.Value, error) {
	cur := doc
	for _, key := range strings.Split(path, shape.PathKeyDelimiter) {
		next, ok := cur.Get(key)
		if !ok {
			return shape.Value{}, fmt.Errorf("%w: no key %q on path %s", shape.ErrInvalidDocument, key, path)
		}
		cur = next
	}
	return cur, nil
}
