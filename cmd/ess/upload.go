package main

import (
	"github.com/spf13/cobra"

	"github.com/jhogstrom/ess-arbetsschema/internal/service"
	"github.com/jhogstrom/ess-arbetsschema/pkg/google"
)

func uploadCmd(a *app) *cobra.Command {
	var manifestFile string
	var force bool
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload the generated files to the shared Drive folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			override(cmd, "manifest", &a.cfg.Paths.Manifest, manifestFile)

			manifest, err := service.ReadManifest(a.cfg.Paths.Manifest)
			if err != nil {
				return err
			}
			if manifest.ParentFolderID == "" {
				manifest.ParentFolderID = a.cfg.Google.ParentFolderID
			}

			opt, err := a.google(ctx)
			if err != nil {
				return err
			}
			drive, err := google.NewDriveClient(ctx, a.logger, opt)
			if err != nil {
				return err
			}
			history, closeDB, err := a.history()
			if err != nil {
				return err
			}
			defer closeDB()

			_, err = service.NewUploadService(drive, history, a.logger).UploadManifest(ctx, manifest, force)
			return err
		},
	}
	cmd.Flags().StringVar(&manifestFile, "manifest", "", "manifest of generated files")
	cmd.Flags().BoolVar(&force, "force", false, "upload files even if unchanged since the last upload")
	return cmd
}
