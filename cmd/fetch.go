package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/san-import-cli/internal/fetcher"
)

var fetchOut string

var fetchCmd = &cobra.Command{
	Use:   "fetch <ftp-url>",
	Short: "Download an archived switch capture from an FTP drop host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := fetcher.New(fetcher.Options{
			User:     cfg.FTP.User,
			Password: cfg.FTP.Password,
			Timeout:  time.Duration(cfg.FTP.TimeoutSecs) * time.Second,
		})

		n, err := f.FetchToFile(cmd.Context(), args[0], fetchOut)
		if err != nil {
			return eris.Wrap(err, "fetch")
		}

		fmt.Printf("wrote %d bytes to %s\n", n, fetchOut)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchOut, "out", "capture.txt", "local path for the downloaded capture")
	rootCmd.AddCommand(fetchCmd)
}
