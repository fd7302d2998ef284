package main

import (
	"github.com/spf13/cobra"

	"tagmerge/internal/traverse"
)

func addQueryFlags(cmd *cobra.Command, q *query) {
	cmd.Flags().StringVarP(&q.element, "element", "e", "", "element to search (required)")
	cmd.Flags().StringVarP(&q.schema, "schema", "s", "", "tag schema to look up (required)")
	_ = cmd.MarkFlagRequired("element")
	_ = cmd.MarkFlagRequired("schema")
}

func newGetCmd(a *app) *cobra.Command {
	var q query

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the most local merged view of a schema on an element",
		Long: `Get resolves the schema on the element with the configured strategy and
prints the view nearest to the element: the first aggregate declaring the
schema wins, even through a meta-tag, and within it directly declared tags
win over meta-tags.

Example:
  tagmerge get -m tags.yaml -e com.acme.OrderService -s Component --strategy exhaustive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.collect(q)
			if err != nil {
				return err
			}

			v, err := c.Get(q.schema)
			if err != nil {
				return err
			}

			return printView(cmd.OutOrStdout(), a.cfg.Output, q.schema, v)
		},
	}

	addQueryFlags(cmd, &q)

	return cmd
}

func newStreamCmd(a *app) *cobra.Command {
	var (
		q        query
		firstRun bool
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Print every merged view of a schema on an element in search order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.collect(q)
			if err != nil {
				return err
			}

			seq := c.Stream(q.schema)
			if firstRun {
				seq = traverse.FirstRunOf(seq)
			}

			views, err := traverse.Collect(seq)
			if err != nil {
				return err
			}

			return printViews(cmd.OutOrStdout(), a.cfg.Output, views)
		},
	}

	addQueryFlags(cmd, &q)
	cmd.Flags().BoolVar(&firstRun, "first-run", false, "stop after the first aggregate that declares the schema")

	return cmd
}
