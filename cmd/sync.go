package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shapecheck/shapecheck/check"
	"github.com/shapecheck/shapecheck/decl"
	"github.com/shapecheck/shapecheck/diag"
	"github.com/shapecheck/shapecheck/internal/log"
	"github.com/shapecheck/shapecheck/shape"
	"github.com/shapecheck/shapecheck/util"
	"github.com/spf13/cobra"
)

var SyncCmd = &cobra.Command{
	Use:          "sync decls.yaml [--source S --companion M]",
	Short:        "Verify that companion mappings mirror the key sets they track",
	Long:         "Without flags, verifies every tracks: pair in the declaration file.",
	RunE:         runSync,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	syncSource    *string
	syncCompanion *string
	syncLogLevel  *int
)

func init() {
	syncSource = SyncCmd.Flags().StringP("source", "s", "", "name of the tracked object type")
	syncCompanion = SyncCmd.Flags().StringP("companion", "c", "", "name of the mapped companion type")
	syncLogLevel = SyncCmd.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level")
	SyncCmd.MarkFlagsRequiredTogether("source", "companion")
}

func runSync(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*syncLogLevel))

	reg, err := decl.LoadFile(args[0])
	if err != nil {
		return err
	}

	pairs := reg.Tracks()
	if *syncSource != "" {
		pairs = []util.Pair[string, string]{util.NewPair(*syncSource, *syncCompanion)}
	}
	if len(pairs) == 0 {
		return fmt.Errorf("%s declares no tracks: pairs; name one with --source and --companion", args[0])
	}

	report := &diag.Report{}
	for _, pair := range pairs {
		source, companion, err := lookupTracked(reg, pair)
		if err != nil {
			return err
		}
		r := check.CheckSync(source, companion)
		if !r.Synchronized() {
			d := diag.Drift(r.MissingInCompanion, r.ExtraInCompanion)
			d.Message = fmt.Sprintf("%s does not track %s: %s", pair.Snd, pair.Fst, d.Message)
			report = report.With(d)
		}
	}
	if report.HasError() {
		return fmt.Errorf("key sets have drifted:\n%s", diag.RenderText(report))
	}
	cmd.Printf("%d companion(s) synchronized\n", len(pairs))
	return nil
}

func lookupTracked(reg *decl.Registry, pair util.Pair[string, string]) (shape.Object, shape.Mapped, error) {
	src, ok := reg.Lookup(pair.Fst)
	if !ok {
		return shape.Object{}, shape.Mapped{}, fmt.Errorf("no type named %q", pair.Fst)
	}
	obj, ok := src.(shape.Object)
	if !ok {
		return shape.Object{}, shape.Mapped{}, fmt.Errorf("%q is not an object type", pair.Fst)
	}
	comp, ok := reg.Lookup(pair.Snd)
	if !ok {
		return shape.Object{}, shape.Mapped{}, fmt.Errorf("no type named %q", pair.Snd)
	}
	mapped, ok := comp.(shape.Mapped)
	if !ok {
		return shape.Object{}, shape.Mapped{}, fmt.Errorf("%q is not a mapped type", pair.Snd)
	}
	return obj, mapped, nil
}
