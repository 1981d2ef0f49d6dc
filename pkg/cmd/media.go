package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/feyabloom/studio/pkg/browser"
	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/storage"
	"github.com/feyabloom/studio/pkg/internal/types"
)

var (
	mediaBucket    string
	mediaSearch    string
	mediaAccept    string
	mediaRecursive bool
	mediaFolder    bool
	mediaPath      string
	mediaProfile   string
	mediaMarker    string

	mediaCmd = &cobra.Command{
		Use:   "media",
		Short: "Browse and manage the media library",
	}

	mediaListCmd = &cobra.Command{
		Use:     "ls [path]",
		Short:   "list one directory level",
		Aliases: []string{"list"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, _ *storage.Manager) error {
				req := &types.ListMediaRequest{Bucket: mediaBucket, Search: mediaSearch, Accept: mediaAccept}
				if len(args) == 1 {
					req.Path = args[0]
				}

				resp, err := service.NewMediaService(ctx).List(ctx, req)
				if err != nil {
					return err
				}

				printListing(cmd.OutOrStdout(), resp)

				return nil
			})
		},
	}

	mediaMkdirCmd = &cobra.Command{
		Use:   "mkdir <path>",
		Short: "create a folder marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, _ *storage.Manager) error {
				parent, name := browser.Split(args[0])

				resp, err := service.NewMediaService(ctx).CreateFolder(ctx, &types.CreateFolderRequest{
					Bucket: mediaBucket,
					Path:   parent,
					Name:   name,
					Marker: mediaMarker,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "created %s/%s (%s marker)\n", resp.Bucket, resp.Path, resp.Marker)

				return nil
			})
		},
	}

	mediaRemoveCmd = &cobra.Command{
		Use:   "rm <path>...",
		Short: "remove files, or a folder with --recursive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, _ *storage.Manager) error {
				svc := service.NewMediaService(ctx)

				if !mediaRecursive {
					resp, err := svc.Delete(ctx, &types.DeleteRequest{Bucket: mediaBucket, Paths: args})
					if err != nil {
						return err
					}

					fmt.Fprintf(cmd.OutOrStdout(), "deleted %d object(s)\n", len(resp.Deleted))

					return nil
				}

				for _, p := range args {
					resp, err := svc.DeleteFolder(ctx, &types.DeleteFolderRequest{Bucket: mediaBucket, Path: p})
					if err != nil {
						return err
					}

					fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%d object(s))\n", resp.Path, resp.Removed)
				}

				return nil
			})
		},
	}

	mediaMoveCmd = &cobra.Command{
		Use:   "mv <path>... <dest-folder>",
		Short: "move files into a folder (\"\" or / for root)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, _ *storage.Manager) error {
				dest := strings.Trim(args[len(args)-1], "/")

				resp, err := service.NewMediaService(ctx).Move(ctx, &types.MoveRequest{
					Bucket:      mediaBucket,
					Paths:       args[:len(args)-1],
					Destination: dest,
				})
				if err != nil {
					return err
				}

				printMoves(cmd.OutOrStdout(), resp)

				return nil
			})
		},
	}

	mediaRenameCmd = &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "rename a file (keeps its extension) or a folder with --folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, _ *storage.Manager) error {
				svc := service.NewMediaService(ctx)

				if mediaFolder {
					resp, err := svc.RenameFolder(ctx, &types.RenameFolderRequest{Bucket: mediaBucket, Path: args[0], NewName: args[1]})
					if err != nil {
						return err
					}

					printMoves(cmd.OutOrStdout(), resp)

					return nil
				}

				res, err := svc.Rename(ctx, &types.RenameRequest{Bucket: mediaBucket, Path: args[0], NewName: args[1]})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", res.From, res.To)

				return nil
			})
		},
	}

	mediaPutCmd = &cobra.Command{
		Use:   "put <file>...",
		Short: "upload local files with an upload profile",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := localFiles(args)
			if err != nil {
				return err
			}

			return withManager(cmd, func(ctx context.Context, _ *storage.Manager) error {
				resp, err := service.NewMediaService(ctx).Upload(ctx, &types.UploadRequest{
					Bucket:  mediaBucket,
					Path:    mediaPath,
					Profile: mediaProfile,
				}, files)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, r := range resp.Results {
					if r.Success {
						fmt.Fprintf(w, "ok\t%s\t%s\n", r.Name, r.PublicURL)
					} else {
						fmt.Fprintf(w, "failed\t%s\t%s\n", r.Name, r.Error)
					}
				}

				_ = w.Flush()
				fmt.Fprintf(cmd.OutOrStdout(), "%d/%d uploaded to %s\n", resp.Success, resp.Total, resp.Bucket)

				return nil
			})
		},
	}

	mediaShellCmd = &cobra.Command{
		Use:   "shell",
		Short: "interactive media browser (type help for commands)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, _ *storage.Manager) error {
				sess, err := service.NewMediaService(ctx).NewSession(mediaBucket)
				if err != nil {
					return err
				}

				return runShell(ctx, sess, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
)

// localFiles 把本地路径包装为上传文件，内容在上传时才打开.
func localFiles(paths []string) ([]service.UploadFile, error) {
	files := make([]service.UploadFile, 0, len(paths))

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}

		files = append(files, service.UploadFile{
			Name: filepath.Base(p),
			Size: info.Size(),
			Open: func() (io.ReadCloser, error) { return os.Open(p) },
		})
	}

	return files, nil
}

func printListing(out io.Writer, resp *types.ListMediaResponse) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	for _, f := range resp.Folders {
		fmt.Fprintf(w, "%s/\t-\t\n", f.Name)
	}

	for _, f := range resp.Files {
		fmt.Fprintf(w, "%s\t%d\t%s\n", f.Name, f.Size, f.ContentType)
	}

	_ = w.Flush()
}

func printMoves(out io.Writer, resp *types.MoveResponse) {
	for _, r := range resp.Results {
		if r.Success {
			fmt.Fprintf(out, "%s -> %s\n", r.From, r.To)
		} else {
			fmt.Fprintf(out, "%s: %s\n", r.From, r.Error)
		}
	}

	fmt.Fprintf(out, "%d moved, %d failed\n", resp.Success, resp.Failed)
}

// registerMediaCommands 注册媒体库相关命令.
func registerMediaCommands() {
	mediaCmd.PersistentFlags().StringVarP(&mediaBucket, "bucket", "b", "", "bucket (default: storage.default_bucket)")

	mediaListCmd.Flags().StringVarP(&mediaSearch, "search", "s", "", "case-insensitive name filter")
	mediaListCmd.Flags().StringVar(&mediaAccept, "accept", "", "comma separated MIME families, e.g. image,video")
	mediaMkdirCmd.Flags().StringVar(&mediaMarker, "marker", "", "marker object type: keep or png")
	mediaRemoveCmd.Flags().BoolVarP(&mediaRecursive, "recursive", "r", false, "remove folders and everything under them")
	mediaRenameCmd.Flags().BoolVar(&mediaFolder, "folder", false, "rename a folder")
	mediaPutCmd.Flags().StringVarP(&mediaPath, "path", "p", "", "target folder")
	mediaPutCmd.Flags().StringVar(&mediaProfile, "profile", "manager", "upload profile: image, media or manager")

	mediaCmd.AddCommand(mediaListCmd, mediaMkdirCmd, mediaRemoveCmd, mediaMoveCmd, mediaRenameCmd, mediaPutCmd, mediaShellCmd)
	rootCmd.AddCommand(mediaCmd)
}
