package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raysh454/vexora/internal/analyzer"
	"github.com/raysh454/vexora/internal/app"
	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/media"
	"github.com/raysh454/vexora/internal/model"
)

// analysisOutput is the JSON shape of an analyze command.
type analysisOutput struct {
	*model.AnalysisResult
	HistoryID string `json:"history_id,omitempty"`
}

// finish saves res unless --no-save and prints it.
func (o *rootOptions) finish(cmd *cobra.Command, a *app.Application, kind model.Kind, input string, res *model.AnalysisResult) error {
	var historyID string
	if !o.NoSave {
		item, err := a.History.Save(cmd.Context(), kind, input, res)
		if err != nil {
			a.Logger.Warn("saving to history", logging.Err(err))
		} else {
			historyID = item.ID
		}
	}
	if o.Output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), analysisOutput{AnalysisResult: res, HistoryID: historyID})
	}
	renderResult(cmd.OutOrStdout(), res, historyID)
	return nil
}

func newURLCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "url <url>",
		Short: "Score a URL or bare host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := analyzer.ValidateURL(args[0]); err != nil {
				return err
			}
			a, closeApp, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			res := a.Analyzer.AnalyzeURL(cmd.Context(), args[0])
			return opts.finish(cmd, a, model.KindURL, args[0], res)
		},
	}
}

func newTextCmd(opts *rootOptions) *cobra.Command {
	var (
		file string
		html bool
	)
	cmd := &cobra.Command{
		Use:   "text [message]",
		Short: "Score a message; reads --file or stdin when no message is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readMessage(cmd.InOrStdin(), args, file)
			if err != nil {
				return err
			}
			if html {
				if text, err = analyzer.TextFromHTML(text); err != nil {
					return err
				}
			}
			if err := analyzer.ValidateText(text); err != nil {
				return err
			}
			a, closeApp, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			res := a.Analyzer.AnalyzeText(cmd.Context(), text)
			return opts.finish(cmd, a, model.KindText, text, res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the message from a file")
	cmd.Flags().BoolVar(&html, "html", false, "Treat the message as HTML and extract its text and links")
	return cmd
}

func readMessage(stdin io.Reader, args []string, file string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", errors.New("give either a message or --file, not both")
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read message: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
}

func newImageCmd(opts *rootOptions) *cobra.Command {
	var mimeType string
	cmd := &cobra.Command{
		Use:   "image <path>",
		Short: "Score an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := media.OpenLocal(args[0], mimeType)
			if err != nil {
				return err
			}
			if err := analyzer.ValidateImage(f); err != nil {
				return err
			}
			a, closeApp, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			res := a.Analyzer.AnalyzeImage(cmd.Context(), f)
			return opts.finish(cmd, a, model.KindImage, f.Name(), res)
		},
	}
	cmd.Flags().StringVar(&mimeType, "mime", "", "Declared MIME type; guessed from the extension when empty")
	return cmd
}

func newVideoCmd(opts *rootOptions) *cobra.Command {
	var mimeType string
	cmd := &cobra.Command{
		Use:   "video <path>",
		Short: "Score a video file (at most 100 MiB)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := media.OpenLocal(args[0], mimeType)
			if err != nil {
				return err
			}
			if err := analyzer.ValidateVideo(f); err != nil {
				return err
			}
			a, closeApp, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			res := a.Analyzer.AnalyzeVideo(cmd.Context(), f)
			return opts.finish(cmd, a, model.KindVideo, f.Name(), res)
		},
	}
	cmd.Flags().StringVar(&mimeType, "mime", "", "Declared MIME type; guessed from the extension when empty")
	return cmd
}
