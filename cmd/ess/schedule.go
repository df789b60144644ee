package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/internal/service"
)

func scheduleCmd(a *app) *cobra.Command {
	var file, date, outdir, header, mapfile, driverSheet, template string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate the driver schedule, map and recipient list per date",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := &a.cfg.Schedule
			override(cmd, "file", &sc.File, file)
			override(cmd, "date", &sc.Date, date)
			override(cmd, "outdir", &sc.OutDir, outdir)
			override(cmd, "header", &sc.Header, header)
			override(cmd, "mapfile", &sc.MapFile, mapfile)
			override(cmd, "template", &sc.Template, template)
			override(cmd, "driversheetid", &a.cfg.Google.DriverSheetID, driverSheet)

			palette := service.LoadPalette(a.cfg.Spaceplan.ColorsFile, a.logger)
			svc := service.NewScheduleService(a.cfg, a.loader(), a.remote(), palette, a.logger)
			res, err := svc.Generate(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info("schedule done",
				zap.Int("reports", len(res.Reports)),
				zap.Int("deleted", len(res.Deleted)),
				zap.Strings("missing_foreman", res.MissingForeman),
			)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "schedule workbook, glob pattern or sheet id (env REPORT_FILE)")
	f.StringVarP(&date, "date", "d", "", "only generate this date, YYYY-MM-DD (env REPORT_DATE)")
	f.StringVarP(&outdir, "outdir", "o", "", "output directory (env OUTDIR)")
	f.StringVar(&header, "header", "", "report title")
	f.StringVar(&mapfile, "mapfile", "", "map template pattern")
	f.StringVar(&driverSheet, "driversheetid", "", "sheet id of the driver schedule (env DRIVERSCHEDULE)")
	f.StringVar(&template, "template", "", "xlsx report template (env TEMPLATE)")
	return cmd
}
