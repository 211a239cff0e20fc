package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/notes-flow/internal/output"
	"github.com/nguyentantai21042004/notes-flow/internal/settings"
	"github.com/nguyentantai21042004/notes-flow/internal/summarizer"
)

func NewProcessCmd(deps *Dependencies) *cobra.Command {
	var (
		mode           string
		allowLong      bool
		apiKey         string
		transcriptFile string
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "process <audio-file>",
		Short: "Transcribe and summarize one recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := settings.ParseMode(mode)
			if err != nil {
				return err
			}

			opts := summarizer.Options{
				Mode:                   m,
				AllowLongTranscription: allowLong,
				Credential:             apiKey,
			}
			if transcriptFile != "" {
				data, err := os.ReadFile(transcriptFile)
				if err != nil {
					return fmt.Errorf("reading transcript: %w", err)
				}
				opts.TranscriptionOverride = string(data)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			f := output.NewFormatter(cmd.ErrOrStderr())
			if !asJSON {
				f.Processing(args[0])
			}

			res, procErr := deps.App.Processor.ProcessWith(ctx, args[0], opts)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			}
			if procErr != nil {
				return procErr
			}

			if res.RequiresAction != "" {
				if !asJSON {
					f.ActionRequired(actionMessage(res), actionHint(res.RequiresAction))
				}
				return ErrActionRequired
			}

			if !asJSON {
				f.NotesReady(res.Provider, res.TokenCount)
				for _, w := range res.Warnings {
					f.Warning(w)
				}
				if res.Error != "" {
					f.Warning(res.Error)
				}
				output.NewFormatter(cmd.OutOrStdout()).Notes(res.Notes)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "auto, local or cloud (default from config)")
	cmd.Flags().BoolVarP(&allowLong, "allow-long", "y", false, "process transcripts above the token threshold without asking")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key for this run")
	cmd.Flags().StringVar(&transcriptFile, "transcript", "", "use this transcript instead of transcribing the audio")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")

	return cmd
}

func actionMessage(res summarizer.Result) string {
	switch res.RequiresAction {
	case summarizer.ActionConfirmLong:
		return fmt.Sprintf("The transcript is long (~%d tokens); processing it takes a while.", res.TokenCount)
	case summarizer.ActionProvideGeminiKey:
		return "Cloud mode needs a Gemini API key."
	}
	return string(res.RequiresAction)
}

func actionHint(action summarizer.Action) string {
	switch action {
	case summarizer.ActionConfirmLong:
		return "Run again with --allow-long to continue; the transcript is saved and will not be re-transcribed."
	case summarizer.ActionProvideGeminiKey:
		return "Run again with --api-key, set GEMINI_API_KEY, or use --mode local."
	}
	return ""
}
