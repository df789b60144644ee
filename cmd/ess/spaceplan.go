package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/internal/service"
)

func spaceplanCmd(a *app) *cobra.Command {
	var (
		file, requests, members, outfile string
		exmembers, onland, scheduled     string
		colors, label                    string
		reset                            bool
	)
	cmd := &cobra.Command{
		Use:   "spaceplan",
		Short: "Color the yard map with this winter's spot requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			sp := &a.cfg.Spaceplan
			override(cmd, "file", &sp.MapFile, file)
			override(cmd, "requests", &sp.Requests, requests)
			override(cmd, "members", &sp.Members, members)
			override(cmd, "outfile", &sp.OutFile, outfile)
			override(cmd, "exmembers", &sp.ExMembers, exmembers)
			override(cmd, "onland", &sp.OnLand, onland)
			override(cmd, "scheduled", &sp.Scheduled, scheduled)
			override(cmd, "colors", &sp.ColorsFile, colors)
			override(cmd, "label", &sp.Label, label)
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			palette := service.LoadPalette(sp.ColorsFile, a.logger)
			svc := service.NewSpaceplanService(a.cfg, a.loader(), palette, a.logger)
			res, err := svc.Plan(cmd.Context(), service.SpaceplanOptions{Reset: reset})
			if err != nil {
				return err
			}
			a.logger.Info("spot plan done",
				zap.String("file", res.OutFile),
				zap.Int("boats", len(res.Reconcile.Boats)),
				zap.Int("left", res.Colorize.Left),
				zap.Int("on_land", res.Colorize.OnLand),
				zap.Int("missing", res.Colorize.Missing),
			)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&file, "file", "", "map template pattern")
	f.StringVar(&requests, "requests", "", "spot request workbook")
	f.StringVar(&members, "members", "", "member workbook with boat info")
	f.StringVar(&outfile, "outfile", "", "output pptx, {year} is replaced")
	f.StringVar(&exmembers, "exmembers", "", "text file of former members")
	f.StringVar(&onland, "onland", "", "workbook of boats stored on land")
	f.StringVar(&scheduled, "scheduled", "", "haul-out schedule workbook")
	f.StringVar(&colors, "colors", "", "colors file (json, yaml or toml)")
	f.StringVar(&label, "label", "", "shape label: name, size or full")
	f.BoolVar(&reset, "reset", false, "paint all member shapes unknown first")
	return cmd
}
