package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"CalicoFM/config"
	"CalicoFM/core/fingerprint"
	"CalicoFM/core/radio"
	"CalicoFM/logger"

	"github.com/spf13/cobra"
)

var playerNoAudio bool

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "终端收听客户端",
	Long: `在终端中收听电台：轮询now-playing元数据，显示曲目与评分，
支持对当前曲目投票（输入 u/d），可选通过ffplay播放HLS流。`,
	Run: func(cmd *cobra.Command, args []string) {
		runPlayer()
	},
}

func init() {
	playerCmd.Flags().BoolVar(&playerNoAudio, "no-audio", false, "不启动ffplay播放音频")
	rootCmd.AddCommand(playerCmd)
}

func runPlayer() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.WarnLevel, // keep the terminal for the display
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	})

	client := radio.NewClient(cfg.APIBaseURL, cfg.MetadataURL)

	sources := append(fingerprint.HostSources(), fingerprint.IPSource(client.ClientIP))
	generator := fingerprint.NewGenerator(sources, fingerprint.DefaultCachePath())
	session := radio.NewSession(generator.Fingerprint())

	display := radio.NewTerminalDisplay(os.Stdout)
	poller := radio.NewPoller(client, session, display, cfg.PollInterval, cfg.CoverURL)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 播放交给外部ffplay，缺失时仅提示，不影响元数据与投票
	if !playerNoAudio {
		play := exec.CommandContext(ctx, cfg.FFplayPath, "-nodisp", "-loglevel", "quiet", cfg.StreamURL)
		if err := play.Start(); err != nil {
			display.Notice(fmt.Sprintf("audio playback unavailable (%v), continuing without it", err))
		} else {
			go play.Wait()
		}
	}

	display.Notice("listening — u: thumbs up, d: thumbs down, q: quit")

	go poller.Run(ctx)
	go radio.RunElapsedTimer(ctx, session, display)

	// 读取stdin处理投票
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			switch strings.TrimSpace(scanner.Text()) {
			case "u":
				if err := poller.Vote(ctx, 1); err != nil {
					display.Notice(err.Error())
				}
			case "d":
				if err := poller.Vote(ctx, -1); err != nil {
					display.Notice(err.Error())
				}
			case "q":
				cancel()
				return
			}
		}
	}()

	<-ctx.Done()
	fmt.Println()
}
