package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seomentor/seomentor-api/internal/report"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Export a stored audit as an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrapf(err, "invalid project id %q", args[0])
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		p, err := env.store.GetProject(ctx, id)
		if err != nil {
			return eris.Wrapf(err, "load project %d", id)
		}

		out := exportOut
		if out == "" {
			out = "seo-plan-" + args[0] + ".xlsx"
		}
		if err := report.WritePlanWorkbook(out, p); err != nil {
			return err
		}
		zap.L().Info("plan exported", zap.Int64("project_id", id), zap.String("path", out))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (default seo-plan-<id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
