package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"todoapi/internal/handlers"
	"todoapi/internal/openapi"
)

// NewOpenAPICommand creates the openapi command, which prints the API
// description.
func NewOpenAPICommand() *cobra.Command {
	var (
		format string
		schema string
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI description of the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := openapi.New(handlers.TodoBasePath)

			var (
				data []byte
				err  error
			)
			switch {
			case schema != "":
				data, err = doc.JSONSchema(schema)
			case format == "json":
				data, err = doc.JSON()
			case format == "yaml":
				data, err = doc.YAML()
			default:
				return fmt.Errorf("invalid format %q: must be json or yaml", format)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := out.Write(data); err != nil {
				return err
			}
			if len(data) > 0 && data[len(data)-1] != '\n' {
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json|yaml)")
	cmd.Flags().StringVar(&schema, "schema", "", "print the named component schema as JSON Schema instead")

	return cmd
}
