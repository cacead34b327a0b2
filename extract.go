package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/muhammadolammi/skillsmap/internal/pipeline"
	"github.com/muhammadolammi/skillsmap/internal/resume"
	"github.com/muhammadolammi/skillsmap/internal/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var showMasked bool

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract skills from a local resume without touching the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := requireEnv("GOOGLE_API_KEY", cfg.GoogleAPIKey); err != nil {
			return err
		}
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		ex := skills.NewExtractor(skills.NewGeminiCompleter(cfg.GeminiModel, cfg.GoogleAPIKey),
			skills.WithModelName(cfg.GeminiModel))
		return runExtract(cmd.Context(), cmd.OutOrStdout(), doc, ex, showMasked)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&showMasked, "show-masked", false, "print the masked resume text")
}

func readDocument(path string) (resume.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return resume.Document{}, errors.Wrapf(err, "read %s", path)
	}
	return resume.Document{
		Filename:  filepath.Base(path),
		MediaType: resume.MediaTypeFromFilename(path),
		Data:      data,
	}, nil
}

func runExtract(ctx context.Context, w io.Writer, doc resume.Document, ex pipeline.SkillExtractor, printMasked bool) error {
	text, err := resume.ExtractText(doc)
	if err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	}
	masked := resume.MaskPII(text)
	if printMasked {
		fmt.Fprintf(w, "--- masked text ---\n%s\n-------------------\n", masked)
	}

	found, err := ex.Extract(ctx, masked, "")
	if err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	}
	if len(found) == 0 {
		fmt.Fprintln(w, "No skills found.")
		return nil
	}
	fmt.Fprintf(w, "Found %d skills:\n", len(found))
	for _, s := range found {
		fmt.Fprintf(w, "- %s\n", s)
	}
	return nil
}
