package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/andreyvit/lifedb"
	"github.com/andreyvit/lifedb/life"
)

// recordKind describes how the CLI reaches and parses one entity kind.
type recordKind[R lifedb.Record] struct {
	use   string
	short string
	lazy  func(c *life.Catalog) *lifedb.Lazy[R]
	parse func(name string, payload []byte) (R, error)
}

var worldKind = recordKind[life.World]{
	use:   "world",
	short: "Manage worlds",
	lazy:  func(c *life.Catalog) *lifedb.Lazy[life.World] { return c.Worlds },
	parse: func(name string, payload []byte) (life.World, error) {
		var w life.World
		if err := decodePayload(payload, &w); err != nil {
			return w, err
		}
		w.Name = name
		if w.Constants == nil {
			w.Constants = slices.Clone(life.ConwayConstants)
		}
		return w, w.Validate()
	},
}

var patternKind = recordKind[life.Pattern]{
	use:   "pattern",
	short: "Manage patterns",
	lazy:  func(c *life.Catalog) *lifedb.Lazy[life.Pattern] { return c.Patterns },
	parse: func(name string, payload []byte) (life.Pattern, error) {
		var p life.Pattern
		if err := decodePayload(payload, &p); err != nil {
			return p, err
		}
		p.Name = name
		return p, p.Validate()
	},
}

func decodePayload(payload []byte, ptr any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(ptr); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

type payloadOptions struct {
	JSON string
	File string
}

func (po *payloadOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&po.JSON, "json", "", "record payload as JSON")
	cmd.Flags().StringVarP(&po.File, "file", "f", "", "read record payload from a JSON file")
	cmd.MarkFlagsMutuallyExclusive("json", "file")
}

func (po *payloadOptions) read() ([]byte, error) {
	if po.File != "" {
		data, err := os.ReadFile(po.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
		return data, nil
	}
	return []byte(po.JSON), nil
}

func newRecordCommand[R lifedb.Record](opts *RootOptions, kind recordKind[R]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.use,
		Short: kind.short,
	}

	store := func() (*lifedb.Store[R], error) {
		return kind.lazy(opts.catalog).Get()
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every " + kind.use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			return printLine(cmd, s.Describe())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "Print the name of every " + kind.use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			return printLine(cmd, s.Keys())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get NAME",
		Short: "Print one " + kind.use + " as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			r, err := s.Get(args[0])
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(r, "", "  ")
			if err != nil {
				return err
			}
			return printLine(cmd, string(raw))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "locate NAME",
		Short: "Print the position of NAME, or where it would be inserted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			pos := s.Locate(args[0])
			if pos > 0 {
				return printLine(cmd, fmt.Sprintf("found at %d", pos))
			}
			return printLine(cmd, fmt.Sprintf("insert at %d", -pos))
		},
	})

	var createPayload payloadOptions
	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Add a new " + kind.use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseArgs(kind, args[0], &createPayload)
			if err != nil {
				return err
			}
			s, err := store()
			if err != nil {
				return err
			}
			if err := s.Create(r); err != nil {
				return err
			}
			return printLine(cmd, "created "+r.RecordKey())
		},
	}
	createPayload.bind(createCmd)
	cmd.AddCommand(createCmd)

	var updatePayload payloadOptions
	updateCmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Replace the contents of an existing " + kind.use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseArgs(kind, args[0], &updatePayload)
			if err != nil {
				return err
			}
			s, err := store()
			if err != nil {
				return err
			}
			if err := s.Update(r); err != nil {
				return err
			}
			return printLine(cmd, "updated "+r.RecordKey())
		},
	}
	updatePayload.bind(updateCmd)
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a " + kind.use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			r, err := s.Delete(args[0])
			if err != nil {
				return err
			}
			return printLine(cmd, "deleted "+r.RecordKey())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Remove every " + kind.use + " and restore the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			if err := s.DeleteAll(); err != nil {
				return err
			}
			return printLine(cmd, s.Keys())
		},
	})

	return cmd
}

func parseArgs[R lifedb.Record](kind recordKind[R], name string, po *payloadOptions) (R, error) {
	payload, err := po.read()
	if err != nil {
		var zero R
		return zero, err
	}
	return kind.parse(name, payload)
}

func printLine(cmd *cobra.Command, s string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
	return err
}
