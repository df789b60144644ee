package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhogstrom/ess-arbetsschema/config"
	"github.com/jhogstrom/ess-arbetsschema/internal/service"
	"github.com/jhogstrom/ess-arbetsschema/internal/sheet"
)

func onlandCmd(a *app) *cobra.Command {
	var members, scheduled, launch string
	var year int
	cmd := &cobra.Command{
		Use:   "onland",
		Short: "List members whose spot no launched boat will take",
		RunE: func(cmd *cobra.Command, args []string) error {
			sp := &a.cfg.Spaceplan
			override(cmd, "members", &sp.Members, members)
			override(cmd, "scheduled", &sp.Scheduled, scheduled)
			override(cmd, "schedule", &sp.LaunchSchedule, launch)
			if year == 0 {
				year = time.Now().Year()
			}

			memberPath, err := sheet.Resolve(sp.Members, a.cfg.Paths.BoatInfoDirs, a.logger)
			if err != nil {
				return err
			}
			mt, err := sheet.ReadFile(memberPath)
			if err != nil {
				return err
			}
			records, err := service.ReadMembers(mt, sp.Columns, a.logger)
			if err != nil {
				return err
			}

			dirs := append(append([]string{}, a.cfg.Paths.BoatInfoDirs...), a.cfg.Paths.ReportDirs...)
			schedPath, err := sheet.Resolve(sp.Scheduled, dirs, a.logger)
			if err != nil {
				return err
			}
			st, err := sheet.ReadFile(schedPath)
			if err != nil {
				return err
			}
			rows, err := service.DecodeScheduleRows(st, &a.cfg.Schedule, a.logger)
			if err != nil {
				return err
			}

			schedule := config.WithYear(sp.LaunchSchedule, year)
			for _, line := range service.FormatOnLand(service.BoatsRemainingOnLand(records, rows, schedule, year)) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&members, "members", "", "member workbook with spots")
	f.StringVar(&scheduled, "scheduled", "", "boat schedule workbook")
	f.StringVar(&launch, "schedule", "", "launch schedule name, {year} is replaced")
	f.IntVar(&year, "year", 0, "season year (default current year)")
	return cmd
}
