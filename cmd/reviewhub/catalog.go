package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reviewhub/internal/catalog"
	"reviewhub/internal/format"
	"reviewhub/pkg/models"
	"reviewhub/pkg/utils"
)

// listSep joins pros and cons inside one CSV cell.
const listSep = "|"

var csvHeader = []string{"id", "title", "category", "rating", "image", "snippet", "content", "pros", "cons"}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Convert and check the review data file",
}

var catalogExportCmd = &cobra.Command{
	Use:   "export-csv",
	Short: "Write the review data file as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		src, _ := cmd.Flags().GetString("source")
		out, _ := cmd.Flags().GetString("out")

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		reviews, err := fetchReviews(ctx, src)
		if err != nil {
			return err
		}
		if err := writeFile(out, func(w io.Writer) error { return exportCSV(w, reviews) }); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ exported %d reviews to %s\n", len(reviews), out)
		return nil
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import-csv",
	Short: "Build a review data file from CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")

		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()

		reviews, err := importCSV(f)
		if err != nil {
			return fmt.Errorf("import csv: %w", err)
		}
		err = writeFile(out, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(reviews)
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ imported %d reviews from %s into %s\n", len(reviews), in, out)
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the review data file and report problems",
	RunE: func(cmd *cobra.Command, _ []string) error {
		src, _ := cmd.Flags().GetString("source")

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		reviews, err := fetchReviews(ctx, src)
		if err != nil {
			return err
		}
		problems := validateReviews(reviews)
		for _, p := range problems {
			fmt.Fprintln(cmd.OutOrStdout(), "⚠️ ", p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("%d problem(s) in %d reviews", len(problems), len(reviews))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %d reviews look good\n", len(reviews))
		return nil
	},
}

func init() {
	catalogCmd.PersistentFlags().String("source", "", "review data file: path, http(s):// or s3:// URI (default from config)")
	catalogExportCmd.Flags().String("out", "data/reviews.csv", "output CSV path")
	catalogImportCmd.Flags().String("in", "data/reviews.csv", "input CSV path")
	catalogImportCmd.Flags().String("out", "data/reviews.json", "output JSON path")
	catalogCmd.AddCommand(catalogExportCmd, catalogImportCmd, catalogValidateCmd)
}

// fetchReviews reads and strictly parses a data file. Unlike the server it
// reports failures instead of falling back to an empty collection.
func fetchReviews(ctx context.Context, uri string) ([]models.Review, error) {
	cfg, err := utils.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	if uri == "" {
		uri = cfg.Catalog.Source
	}
	src, err := catalog.NewSource(ctx, uri, catalog.S3Options{
		Region:    cfg.Catalog.S3.Region,
		Endpoint:  cfg.Catalog.S3.Endpoint,
		PathStyle: cfg.Catalog.S3.PathStyle,
	})
	if err != nil {
		return nil, err
	}
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Name(), err)
	}
	reviews, err := catalog.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name(), err)
	}
	return reviews, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func exportCSV(w io.Writer, reviews []models.Review) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range reviews {
		if err := cw.Write([]string{
			strconv.Itoa(r.ID),
			r.Title,
			r.Category,
			strconv.Itoa(int(r.Rating)),
			r.Image,
			r.Snippet,
			r.Content,
			strings.Join(r.Pros, listSep),
			strings.Join(r.Cons, listSep),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func importCSV(r io.Reader) ([]models.Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	if _, ok := header["id"]; !ok {
		return nil, errors.New(`csv header has no "id" column`)
	}

	reviews := []models.Review{}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}

		rawID := valueAt(header, row, "id")
		if rawID == "" {
			continue
		}
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse id %q: %w", line, rawID, err)
		}
		rating := 0
		if raw := valueAt(header, row, "rating"); raw != "" {
			if rating, err = strconv.Atoi(raw); err != nil {
				return nil, fmt.Errorf("line %d: parse rating %q: %w", line, raw, err)
			}
		}

		reviews = append(reviews, models.Review{
			ID:       id,
			Title:    valueAt(header, row, "title"),
			Category: valueAt(header, row, "category"),
			Rating:   models.Rating(rating),
			Image:    valueAt(header, row, "image"),
			Snippet:  valueAt(header, row, "snippet"),
			Content:  rawAt(header, row, "content"),
			Pros:     splitList(valueAt(header, row, "pros")),
			Cons:     splitList(valueAt(header, row, "cons")),
		})
	}
	return reviews, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	return strings.TrimSpace(rawAt(header, row, key))
}

// rawAt keeps surrounding whitespace; content lines are significant.
func rawAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, listSep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func validateReviews(reviews []models.Review) []string {
	var problems []string
	seen := make(map[int]int, len(reviews))
	for i, r := range reviews {
		where := fmt.Sprintf("review #%d (id %d)", i+1, r.ID)
		if first, ok := seen[r.ID]; ok {
			problems = append(problems, fmt.Sprintf("%s: duplicate id, first used by review #%d", where, first+1))
		} else {
			seen[r.ID] = i
		}
		if strings.TrimSpace(r.Title) == "" {
			problems = append(problems, where+": missing title")
		}
		if strings.TrimSpace(r.Category) == "" {
			problems = append(problems, where+": missing category")
		}
		if n := int(r.Rating); n != format.Clamp(n) {
			problems = append(problems, fmt.Sprintf("%s: rating %d outside 0..%d", where, n, format.MaxRating))
		}
	}
	return problems
}
