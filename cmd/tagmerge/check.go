package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tagmerge/internal/alias"
	"tagmerge/internal/declfile"
	"tagmerge/internal/diagnostic"
)

var errCheckFailed = errors.New("check failed")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate a declaration file and the alias graph of every schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCheck(cmd.OutOrStdout())
		},
	}
}

func (a *app) runCheck(out io.Writer) error {
	f, err := a.load()
	if err != nil {
		return err
	}

	diags := declfile.Validate(f)
	if diags.IsValid() {
		if err := a.checkSchemas(f, diags); err != nil {
			return err
		}
	}

	printDiagnostics(out, diags)

	if diags.HasErrors() {
		return fmt.Errorf("%w: %d error(s)", errCheckFailed, len(diags.Errors))
	}

	return nil
}

// checkSchemas builds the alias graph of every declared schema. A
// misconfigured schema fails every root that reaches it, so each distinct
// configuration error is reported once.
func (a *app) checkSchemas(f *declfile.File, diags *diagnostic.Diagnostics) error {
	s, err := a.open(f)
	if err != nil {
		return err
	}

	reported := make(map[alias.ConfigError]bool)

	for _, name := range s.model.Schemas() {
		m, err := s.builder.Build(name)
		if err != nil {
			var cfgErr *alias.ConfigError
			if !errors.As(err, &cfgErr) {
				return err
			}

			key := *cfgErr
			key.Root = ""

			if !reported[key] {
				reported[key] = true
				diags.AddError(cfgErr.Reason.String(), err.Error(), cfgErr.Schema, cfgErr.Attribute)
			}

			continue
		}

		diags.AddInfo("built", fmt.Sprintf("%d meta-tag(s)", m.Len()-1), name, "")
	}

	return nil
}
