package cmd

import (
	"CalicoFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动CalicoFM服务器",
	Long:  `启动CalicoFM评分系统的HTTP服务器，提供评分API、Web界面和now-playing中继。`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
