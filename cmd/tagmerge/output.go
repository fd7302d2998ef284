package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"tagmerge/internal/declfile"
	"tagmerge/internal/diagnostic"
	"tagmerge/internal/merge"
)

func printDiagnostics(out io.Writer, d *diagnostic.Diagnostics) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	for _, diag := range d.All() {
		c := gray

		switch diag.Severity {
		case diagnostic.SeverityError:
			c = red
		case diagnostic.SeverityWarning:
			c = yellow
		}

		c.Fprintf(out, "%-7s ", diag.Severity)
		fmt.Fprintln(out, diag.String())
	}

	summary := fmt.Sprintf("%d error(s), %d warning(s)", len(d.Errors), len(d.Warnings))
	if d.HasErrors() {
		red.Fprintln(out, summary)
	} else {
		green.Fprintln(out, summary)
	}
}

// viewDoc is the YAML form of a present view. Values keep declaration order.
type viewDoc struct {
	Schema    string          `yaml:"schema"`
	Source    string          `yaml:"source"`
	Aggregate int             `yaml:"aggregate"`
	Depth     int             `yaml:"depth"`
	MetaTypes []string        `yaml:"meta_types,flow"`
	Values    declfile.Values `yaml:"values"`
}

type missingDoc struct {
	Schema  string `yaml:"schema"`
	Present bool   `yaml:"present"`
}

func newViewDoc(v *merge.View) (*viewDoc, error) {
	tag, err := v.Synthesize()
	if err != nil {
		return nil, err
	}

	return &viewDoc{
		Schema:    v.SchemaName(),
		Source:    v.Source(),
		Aggregate: v.AggregateIndex(),
		Depth:     v.Depth(),
		MetaTypes: v.MetaTypes(),
		Values:    declfile.Values{Attributes: tag.Attributes()},
	}, nil
}

// printView writes one view; name is reported for a missing view.
func printView(out io.Writer, format, name string, v *merge.View) error {
	if !v.IsPresent() {
		if format == outputText {
			_, err := fmt.Fprintln(out, v.String())
			return err
		}

		return writeYAML(out, missingDoc{Schema: name})
	}

	if format == outputText {
		return printViewText(out, v)
	}

	doc, err := newViewDoc(v)
	if err != nil {
		return err
	}

	return writeYAML(out, doc)
}

func printViews(out io.Writer, format string, views []*merge.View) error {
	if format == outputText {
		for _, v := range views {
			if err := printViewText(out, v); err != nil {
				return err
			}
		}

		return nil
	}

	docs := make([]*viewDoc, 0, len(views))

	for _, v := range views {
		doc, err := newViewDoc(v)
		if err != nil {
			return err
		}

		docs = append(docs, doc)
	}

	return writeYAML(out, docs)
}

func printViewText(out io.Writer, v *merge.View) error {
	tag, err := v.Synthesize()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s on %s (aggregate %d, depth %d)\n",
		tag, v.Source(), v.AggregateIndex(), v.Depth())

	return err
}

func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	return enc.Close()
}
