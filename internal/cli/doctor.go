package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/notes-flow/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps.App
			cfg := a.Config
			f := output.NewFormatter(cmd.OutOrStdout())
			ok := true

			if path, err := exec.LookPath(cfg.Transcription.Command); err != nil {
				f.SetupCheck("Transcription command", false, fmt.Sprintf("%s not found", cfg.Transcription.Command))
				ok = false
			} else {
				f.SetupCheck("Transcription command", true, path)
			}

			if cfg.Transcription.NormalizeAudio {
				if _, err := exec.LookPath(cfg.FFmpeg.BinaryPath); err != nil {
					f.SetupCheck("ffmpeg", false, "not found. Install it or set transcription.normalize_audio: false")
					ok = false
				} else {
					f.SetupCheck("ffmpeg", true, "installed")
				}
			}

			snap := a.Settings.Snapshot()
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if local, err := a.Providers.Local(ctx, snap); err != nil {
				f.SetupCheck("Local model server", false, err.Error())
				if snap.Mode == "local" {
					ok = false
				}
			} else if sub := local.Substitution(); sub != "" {
				f.SetupCheck("Local model server", true, fmt.Sprintf("%s (%s)", local.Endpoint(), sub))
			} else {
				f.SetupCheck("Local model server", true, fmt.Sprintf("%s, model %s", local.Endpoint(), local.Model()))
			}

			if snap.HasCredential() {
				f.SetupCheck("Gemini API key", true, "configured")
			} else {
				f.SetupCheck("Gemini API key", false, "not set. Set GEMINI_API_KEY or gemini.api_key (needed for cloud mode)")
				if snap.Mode == "cloud" {
					ok = false
				}
			}

			for _, dir := range []string{cfg.Paths.Input, cfg.Paths.Output} {
				if info, err := os.Stat(dir); err != nil || !info.IsDir() {
					f.SetupCheck("Folder", false, dir+" missing (created by watch)")
				} else {
					f.SetupCheck("Folder", true, dir)
				}
			}

			if ok {
				f.Success("\nAll prerequisites met.")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
