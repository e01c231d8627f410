package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/resensebox/Mindful-Libraries-sub000/common/id"
	"github.com/resensebox/Mindful-Libraries-sub000/common/logger"
	"github.com/resensebox/Mindful-Libraries-sub000/core/config"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/catalog"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/dto"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/report"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/service"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/session"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/vocabulary"
)

var (
	rootCmd = &cobra.Command{
		Use:           "mindful",
		Short:         "mindful - reading recommendations from a few facts about a person",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	recommendCmd = &cobra.Command{
		Use:   "recommend",
		Short: "Derive topics and print recommendations for one person",
		RunE:  runRecommend,
	}

	topicsCmd = &cobra.Command{
		Use:   "topics",
		Short: "List the topic vocabulary",
		RunE:  runTopics,
	}

	catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Load the catalog once and report what was read",
		RunE:  runCatalog,
	}
)

var (
	factsFlag model.UserFacts
	pdfFlag   string
	jsonFlag  bool
)

func init() {
	recommendCmd.Flags().StringVar(&factsFlag.Name, "name", "", "person's name (required)")
	recommendCmd.Flags().StringVar(&factsFlag.Jobs, "jobs", "", "past jobs")
	recommendCmd.Flags().StringVar(&factsFlag.Hobbies, "hobbies", "", "hobbies")
	recommendCmd.Flags().StringVar(&factsFlag.Decade, "decade", "", "favorite decade")
	recommendCmd.Flags().StringVar(&pdfFlag, "pdf", "", "also write the report to this file")

	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "print JSON instead of text")
	rootCmd.AddCommand(recommendCmd, topicsCmd, catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return cfg, err
	}
	logger.Setup(cfg)
	return cfg, nil
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := id.Init(2); err != nil {
		return fmt.Errorf("initializing id generator: %w", err)
	}

	services, cleanup, err := service.Build(ctx, cfg)
	defer cleanup()
	if err != nil {
		return err
	}

	bundle, err := services.Recommendations().Recommend(ctx, service.RecommendParams{
		Facts:   factsFlag,
		Action:  service.ActionGenerate,
		Counter: session.NewAggregator(),
	})
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return errors.New(verr.Error())
	}
	if err != nil {
		return err
	}

	if pdfFlag != "" {
		if err := writePDF(pdfFlag, bundle); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if jsonFlag {
		return writeJSON(out, dto.ToRecommendationResponse(bundle))
	}
	printBundle(out, bundle)
	return nil
}

func runTopics(cmd *cobra.Command, _ []string) error {
	vocab := vocabulary.Default()
	out := cmd.OutOrStdout()
	if jsonFlag {
		return writeJSON(out, dto.ToTopicsResponse(vocab))
	}
	printVocabulary(out, vocab)
	return nil
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, closeSource, err := catalog.NewSource(ctx, cfg.Catalog, cfg.DB)
	if err != nil {
		return err
	}
	defer closeSource()

	items, err := catalog.NewStore(source, cfg.Catalog.TTL, cfg.Catalog.Timeout).Load(ctx)
	if err != nil {
		return err
	}

	vocab := vocabulary.Default()
	books, unknown := 0, map[string]int{}
	for _, item := range items {
		if item.IsBook() {
			books++
		}
		for tag := range item.Tags {
			if !vocab.Contains(tag) {
				unknown[tag]++
			}
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d items (%d books) from %s source\n", len(items), books, source.Name())
	if len(unknown) > 0 {
		fmt.Fprintf(out, "%d tags are outside the vocabulary and can never match:\n", len(unknown))
		for _, tag := range sortedKeys(unknown) {
			fmt.Fprintf(out, "  %s (%d)\n", tag, unknown[tag])
		}
	}
	return nil
}

func writePDF(path string, bundle *model.Bundle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := report.NewPDFRenderer().Render(f, bundle); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBundle(w io.Writer, b *model.Bundle) {
	fmt.Fprintf(w, "Topics: %s\n", strings.Join(b.Topics, ", "))
	if !b.HasMatches() {
		fmt.Fprintln(w, dto.NoMatchesMessage)
		return
	}
	for i, r := range b.Recommendations {
		fmt.Fprintf(w, "\n%d. %s (%s) [score %d]\n", i+1, r.Item.Title, r.Item.Type, r.Score)
		if r.Item.Summary != "" {
			fmt.Fprintf(w, "   %s\n", r.Item.Summary)
		}
		if r.Item.Tags.Len() > 0 {
			fmt.Fprintf(w, "   tags: %s\n", strings.Join(r.Item.Tags.Sorted(), ", "))
		}
		if r.Item.URL != "" {
			fmt.Fprintf(w, "   %s\n", r.Item.URL)
		}
	}
}

func printVocabulary(w io.Writer, v *vocabulary.Vocabulary) {
	for _, c := range v.Categories() {
		fmt.Fprintf(w, "%s\n  %s\n", c.Name, strings.Join(c.Topics, ", "))
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
