package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"postcraft/internal/gallery"
)

var galleryPrefix string

// galleryCmd groups the saved-image commands
var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "List, export and delete saved images",
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved images, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer app.Close()

		images := app.studio.Gallery.List()
		out := cmd.OutOrStdout()
		if len(images) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("Gallery is empty."))
			return nil
		}
		t := newTable("ID", "Template", "Created")
		for _, img := range images {
			t.Row(img.ID, img.TemplateID, img.Timestamp.Local().Format(time.DateTime))
		}
		fmt.Fprintln(out, t.Render())
		return nil
	},
}

var galleryDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete one saved image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()
		return app.studio.DeleteImage(ctx, args[0])
	},
}

var galleryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved image",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()
		return app.studio.ClearGallery(ctx)
	},
}

var galleryExportCmd = &cobra.Command{
	Use:   "export DIR [ID...]",
	Short: "Write saved images to DIR as PNG files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer app.Close()

		prefix := galleryPrefix
		if prefix == "" {
			prefix = cfg.Brand.ExportPrefix
		}
		dir, ids := args[0], args[1:]

		var paths []string
		if len(ids) == 0 {
			paths, err = app.studio.Gallery.Export(dir, prefix)
			if err != nil {
				return err
			}
		} else {
			for _, id := range ids {
				img, ok := app.studio.Gallery.Get(id)
				if !ok {
					return fmt.Errorf("image %s not found", id)
				}
				p, err := gallery.WriteImage(dir, prefix, img)
				if err != nil {
					return err
				}
				paths = append(paths, p)
			}
		}

		out := cmd.OutOrStdout()
		for _, p := range paths {
			fmt.Fprintln(out, p)
		}
		return nil
	},
}

func init() {
	galleryExportCmd.Flags().StringVar(&galleryPrefix, "prefix", "", "File name prefix (default: brand.export_prefix)")

	galleryCmd.AddCommand(galleryListCmd)
	galleryCmd.AddCommand(galleryDeleteCmd)
	galleryCmd.AddCommand(galleryClearCmd)
	galleryCmd.AddCommand(galleryExportCmd)
}
