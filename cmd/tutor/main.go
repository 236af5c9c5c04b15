// Package main runs the Spanish tutor in the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/koscakluka/ema-tutor/internal/ui"
	"github.com/spf13/cobra"
)

var (
	level          string
	mode           string
	chatProvider   string
	ttsProvider    string
	voice          string
	logFile        string
	captureBackend string
	noAudio        bool

	rootCmd = &cobra.Command{
		Use:          "tutor",
		Short:        "Practice Spanish with Pablo, a talking tutor",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         execute,
	}
)

func loadConfig(cmd *cobra.Command) (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyFlags overrides the environment with the flags set on the command
// line.
func applyFlags(cmd *cobra.Command, cfg *Config) {
	flags := cmd.Flags()
	if flags.Changed("level") {
		cfg.Level = level
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("chat") {
		cfg.ChatProvider = chatProvider
	}
	if flags.Changed("tts") {
		cfg.TTSProvider = ttsProvider
	}
	if flags.Changed("voice") {
		cfg.Voice = voice
	}
	if flags.Changed("capture") {
		cfg.CaptureBackend = captureBackend
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("no-audio") {
		cfg.NoAudio = noAudio
	}
}

func execute(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	closeLog, err := setupLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	bridge := ui.NewBridge()
	tutor, cleanup, err := newSession(cfg, bridge)
	if err != nil {
		return err
	}
	defer cleanup()

	log.Info("starting tutor", "level", cfg.Level, "mode", cfg.Mode, "chat", cfg.ChatProvider, "tts", cfg.TTSProvider)
	program := tea.NewProgram(ui.New(tutor, bridge), tea.WithAltScreen())
	_, runErr := program.Run()

	bridge.Close()
	tutor.Close()
	if runErr != nil {
		return fmt.Errorf("failed to run the terminal UI: %w", runErr)
	}
	return nil
}

func init() {
	rootCmd.Flags().StringVarP(&level, "level", "l", "", "proficiency level (B1, B2, C1, C2)")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", "", "start in chat or practice mode")
	rootCmd.Flags().StringVar(&chatProvider, "chat", "", "chat provider (gemini, openai)")
	rootCmd.Flags().StringVar(&ttsProvider, "tts", "", "speech provider (gemini, deepgram)")
	rootCmd.Flags().StringVar(&voice, "voice", "", "voice name for the speech provider")
	rootCmd.Flags().StringVar(&captureBackend, "capture", "", "microphone backend (miniaudio, portaudio)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.Flags().BoolVar(&noAudio, "no-audio", false, "run text-only without speech")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
