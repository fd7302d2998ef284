package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"tagmerge/internal/alias"
	"tagmerge/internal/schema"
)

// dumpNode is the flattened form of a mapping node printed by dump.
type dumpNode struct {
	Index     int
	Depth     int
	Schema    string
	MetaTypes []string
	Declared  string
	Mirrors   map[string][]string
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func newDumpCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the meta-tag tree and alias mirrors of a schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.load()
			if err != nil {
				return err
			}

			s, err := a.open(f)
			if err != nil {
				return err
			}

			m, err := s.builder.Build(name)
			if err != nil {
				return err
			}

			nodes := make([]dumpNode, 0, m.Len())
			for n := range m.All() {
				nodes = append(nodes, newDumpNode(n))
			}

			dumpConfig.Fdump(cmd.OutOrStdout(), nodes)

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "schema", "s", "", "tag schema to dump (required)")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

// newDumpNode lists, for every aliased attribute of the node's schema, the
// mirror set it belongs to on the node's path.
func newDumpNode(n *alias.Node) dumpNode {
	d := dumpNode{
		Index:     n.Index(),
		Depth:     n.Depth(),
		Schema:    n.Schema().Name,
		MetaTypes: n.MetaTypes(),
	}

	if n.Declared() != nil {
		d.Declared = n.Declared().String()
	}

	t := n.Table()

	for i, spec := range n.Schema().Attributes {
		r := alias.Ref{Depth: n.Depth(), Attribute: i}
		if !t.IsAliased(r) {
			continue
		}

		if d.Mirrors == nil {
			d.Mirrors = make(map[string][]string)
		}

		for _, m := range t.Mirrors(r) {
			d.Mirrors[spec.Name] = append(d.Mirrors[spec.Name], refName(t.Schema(m.Depth), t.Spec(m)))
		}
	}

	return d
}

func refName(s *schema.TypeSchema, spec *schema.AttributeSpec) string {
	return s.Name + "." + spec.Name
}
