package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/schema"
)

var schemaRegistryFile string

// schemaCmd groups inspection commands for the entity type registry.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the entity type registry",
}

// schemaListCmd prints all entity types in generation order.
var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entity types in generation order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := loadSchemaRegistry()
		if err != nil {
			return err
		}
		order, err := schema.Order(reg, nil)
		if err != nil {
			return err
		}
		for _, name := range order {
			entityType, _ := reg.Type(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %d fields\n", name, len(entityType.Fields))
		}
		return nil
	},
}

// schemaShowCmd prints the field layout of one entity type.
var schemaShowCmd = &cobra.Command{
	Use:   "show <entity-type>",
	Short: "Show the fields of an entity type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadSchemaRegistry()
		if err != nil {
			return err
		}
		entityType, ok := reg.Type(args[0])
		if !ok {
			return errors.NewNotFoundError("entity type", args[0])
		}

		fmt.Fprintln(cmd.OutOrStdout(), entityType.Name)
		for _, field := range entityType.Fields {
			var notes []string
			if field.Many {
				notes = append(notes, "many")
			}
			if field.Optional {
				notes = append(notes, "optional")
			}
			if len(field.Targets) > 0 {
				notes = append(notes, "-> "+strings.Join(field.Targets, ", "))
			}
			if len(field.Values) > 0 {
				notes = append(notes, "one of "+strings.Join(field.Values, ", "))
			}
			suffix := ""
			if len(notes) > 0 {
				suffix = "  (" + strings.Join(notes, "; ") + ")"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %-28s %s%s\n", field.Name, field.Kind, suffix)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaListCmd)
	schemaCmd.AddCommand(schemaShowCmd)

	schemaCmd.PersistentFlags().StringVar(&schemaRegistryFile, "registry", "", "schema registry YAML file (default: builtin)")
}

func loadSchemaRegistry() (*schema.Registry, error) {
	if schemaRegistryFile != "" {
		return schema.LoadFile(schemaRegistryFile)
	}
	return schema.Builtin()
}
