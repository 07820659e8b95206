package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"github.com/pricelens/backend/config"
	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/infrastructure/pdf"
	"github.com/pricelens/backend/internal/infrastructure/source"
	"github.com/pricelens/backend/internal/usecase"
)

/*
compareOptions controls which scrape files are read, how the catalog is filtered
and which products end up on the exported shopping list.
*/
type compareOptions struct {
	DataDir  string
	Patterns []string
	Filter   domain.Filter
	Add      string
	Export   string
	OutDir   string
	Strict   bool
	Limit    int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		tl.Log(tl.Error, palette.RedBold, "Failed to load configuration: '%s'", err)
		os.Exit(1)
	}
	options := parseFlags(cfg)

	tl.Log(tl.Notice, palette.BlueBold, "Loading catalog from '%s' (%s)", options.DataDir, strings.Join(options.Patterns, ", "))

	catalogService := usecase.NewCatalogService(
		source.NewFileSource(options.DataDir, options.Patterns),
		usecase.NewCatalogBuilder(usecase.CatalogBuilderConfig{
			PlaceholderImage:   cfg.Catalog.PlaceholderImage,
			EnableDebugLogging: cfg.Catalog.Debug,
		}),
	)
	catalog, err := catalogService.Load(context.Background())
	if catalog != nil {
		for _, warning := range catalog.Report.Warnings() {
			tl.Log(tl.Warning, palette.PurpleBright, "%s", warning)
		}
	}
	if err != nil {
		tl.Log(tl.Error, palette.RedBold, "No products available: '%s'", err)
		os.Exit(1)
	}
	tl.Log(tl.Info1, palette.Green, "Loaded %s products", strconv.Itoa(catalog.Len()))

	products, err := usecase.Query(catalog, options.Filter)
	if err != nil {
		tl.Log(tl.Error, palette.RedBold, "Query failed: '%s'", err)
		os.Exit(1)
	}
	printProducts(products, options.Limit)

	if options.Export == "" {
		return
	}

	format, err := usecase.ParseExportFormat(options.Export)
	if err != nil {
		tl.Log(tl.Error, palette.RedBold, "%s", err)
		os.Exit(1)
	}

	cart := usecase.NewCart()
	for _, product := range selectProducts(catalog, products, options.Add) {
		cart.Add(product)
	}
	if cart.Len() == 0 {
		tl.Log(tl.Warning, palette.YellowBold, "Nothing to export: use %s to pick products", "-add")
		return
	}

	exporter := usecase.NewExportService(
		pdf.NewRenderer(pdf.RendererConfig{Paper: cfg.Export.Paper, FontSize: cfg.Export.FontSize}),
		usecase.ExportServiceConfig{
			CurrencySuffix: cfg.Export.CurrencySuffix,
			DocumentTitle:  cfg.Export.Title,
			StrictLatin1:   options.Strict,
		},
	)
	result, err := exporter.Export(format, cart.GroupByRetailerThenCategory(), cart.TotalPrice())
	if err != nil {
		tl.Log(tl.Error, palette.RedBold, "Export failed: '%s'", err)
		os.Exit(1)
	}
	for _, warning := range result.Warnings {
		tl.Log(tl.Warning, palette.PurpleBright, "%s", warning)
	}

	if err := os.MkdirAll(options.OutDir, 0o755); err != nil {
		tl.Log(tl.Error, palette.RedBold, "Create output directory: '%s'", err)
		os.Exit(1)
	}
	outputPath := filepath.Join(options.OutDir, result.FileName)
	if err := os.WriteFile(outputPath, result.Data, 0o644); err != nil {
		tl.Log(tl.Error, palette.RedBold, "Write shopping list: '%s'", err)
		os.Exit(1)
	}

	tl.Log(tl.Info1, palette.Green, "Saved %s items (%s) to '%s'",
		strconv.Itoa(cart.Len()), strconv.FormatFloat(cart.TotalPrice(), 'f', 2, 64)+cfg.Export.CurrencySuffix, outputPath)
}

/*
parseFlags parses CLI flags on top of the loaded configuration.

Defaults come from config (PRICELENS_* env vars, config.yaml or built-in defaults).
*/
func parseFlags(cfg *config.Config) compareOptions {
	dirFlag := flag.String("dir", cfg.Catalog.DataDir, "Directory with scraper output files")
	patternFlag := flag.String("pattern", strings.Join(cfg.Catalog.Patterns, ","), "Comma separated file name patterns")
	categoryFlag := flag.String("category", "", "Exact category to list")
	titleFlag := flag.String("title", "", "Exact product title to compare across retailers")
	keywordFlag := flag.String("keyword", "", "Case-insensitive text to look for in titles")
	addFlag := flag.String("add", "", "Comma separated product ids to put on the list, or 'all' for every match")
	exportFlag := flag.String("export", "", "Export format: txt, json or pdf")
	outFlag := flag.String("out", ".", "Directory for the exported shopping list")
	strictFlag := flag.Bool("strict", cfg.Export.StrictLatin1, "Fail PDF exports that cannot be represented in Latin-1")
	limitFlag := flag.Int("limit", 50, "Maximum rows to print (0 prints all)")

	flag.Parse()

	var patterns []string
	for _, p := range strings.Split(*patternFlag, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}

	return compareOptions{
		DataDir:  *dirFlag,
		Patterns: patterns,
		Filter: domain.Filter{
			Category: strings.TrimSpace(*categoryFlag),
			Title:    strings.TrimSpace(*titleFlag),
			Keyword:  strings.TrimSpace(*keywordFlag),
		},
		Add:    strings.TrimSpace(*addFlag),
		Export: *exportFlag,
		OutDir: *outFlag,
		Strict: *strictFlag,
		Limit:  *limitFlag,
	}
}

// printProducts lists matches cheapest first
func printProducts(products []domain.ProductRecord, limit int) {
	if len(products) == 0 {
		tl.Log(tl.Warning, palette.YellowBold, "%s", "No products match the current filter")
		return
	}

	tl.Log(tl.Notice, palette.BlueBold, "%s matches, cheapest first", strconv.Itoa(len(products)))
	for i, p := range products {
		if limit > 0 && i >= limit {
			tl.Log(tl.Info, palette.CyanDim, "... %s more", strconv.Itoa(len(products)-limit))
			break
		}
		tl.Log(tl.Info, palette.Cyan, "#%s  %s  %s / %s  %s",
			strconv.Itoa(p.ID), strconv.FormatFloat(p.Price, 'f', 2, 64), p.Retailer, p.Category, p.Title)
	}
}

// selectProducts resolves the -add flag against the catalog. Unknown ids are
// reported and skipped.
func selectProducts(catalog *domain.Catalog, matches []domain.ProductRecord, add string) []domain.ProductRecord {
	if add == "" {
		return nil
	}
	if strings.EqualFold(add, "all") {
		return matches
	}

	var selected []domain.ProductRecord
	for _, field := range strings.Split(add, ",") {
		field = strings.TrimSpace(field)
		id, err := strconv.Atoi(field)
		if err != nil {
			tl.Log(tl.Warning, palette.YellowBold, "Ignoring invalid product id '%s'", field)
			continue
		}
		product, ok := catalog.Product(id)
		if !ok {
			tl.Log(tl.Warning, palette.YellowBold, "Ignoring unknown product id '%s'", field)
			continue
		}
		selected = append(selected, product)
	}
	return selected
}
