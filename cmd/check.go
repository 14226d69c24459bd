package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shapecheck/shapecheck/check"
	"github.com/shapecheck/shapecheck/decl"
	"github.com/shapecheck/shapecheck/diag"
	"github.com/shapecheck/shapecheck/internal/log"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check decls.yaml --source S --target T",
	Short:        "Decide whether one declared type is assignable to another",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	checkSource   *string
	checkTarget   *string
	checkLogLevel *int
)

func init() {
	checkSource = CheckCmd.Flags().StringP("source", "s", "", "name of the source type")
	checkTarget = CheckCmd.Flags().StringP("target", "t", "", "name of the target type")
	checkLogLevel = CheckCmd.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level")
	_ = CheckCmd.MarkFlagRequired("source")
	_ = CheckCmd.MarkFlagRequired("target")
}

func runCheck(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*checkLogLevel))

	reg, err := decl.LoadFile(args[0])
	if err != nil {
		return err
	}
	source, ok := reg.Lookup(*checkSource)
	if !ok {
		return fmt.Errorf("no type named %q in %s", *checkSource, args[0])
	}
	target, ok := reg.Lookup(*checkTarget)
	if !ok {
		return fmt.Errorf("no type named %q in %s", *checkTarget, args[0])
	}

	verdict, err := check.Assign(source, target)
	if err != nil {
		return err
	}
	if verdict.Compatible() {
		cmd.Printf("%s is assignable to %s\n", *checkSource, *checkTarget)
		return nil
	}
	report := (&diag.Report{}).With(diag.Assignability(verdict.Path, verdict.Code, verdict.Detail))
	return fmt.Errorf("%s is not assignable to %s:\n%s", *checkSource, *checkTarget, diag.RenderText(report))
}
