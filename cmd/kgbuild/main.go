package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/zhiwen/backend/internal/service"
	"github.com/zhiwen/backend/internal/util"
	"github.com/zhiwen/backend/pkg/kg"
	"github.com/zhiwen/backend/pkg/loader"
	"github.com/zhiwen/backend/pkg/logger"
	"github.com/zhiwen/backend/pkg/logger/console"
	"github.com/zhiwen/backend/pkg/tokenizer/gse"
)

// kgbuild builds a knowledge graph over a document directory and prints
// its statistics, without starting the HTTP server.
func main() {
	util.LoadEnv()

	documentsDir := flag.String("documents", util.GetEnvString("DOCUMENTS_DIR", "documents"), "directory with the text corpus")
	customWordsFile := flag.String("custom-words", util.GetEnvString("CUSTOM_WORDS_FILE", "custom_words.txt"), "custom dictionary file, one term per line")
	topN := flag.Int("top", 10, "number of top entities to print")
	percent := flag.Int("percent", 10, "percentage of entities to keep in the projection (1-100)")
	outDir := flag.String("out", "output", "directory for the projection payload, empty to skip")
	flag.Parse()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *documentsDir, *customWordsFile, *topN, *percent, *outDir); err != nil {
		logger.Fatal("[KgBuild] Build failed", "error", err)
	}
}

func run(ctx context.Context, documentsDir, customWordsFile string, topN, percent int, outDir string) error {
	docLoader, err := loader.NewDocumentLoader(loader.NewDocumentLoaderParams{
		DocumentsDir: documentsDir,
	})
	if err != nil {
		return err
	}

	docs, err := docLoader.LoadAll(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found in %q", documentsDir)
	}
	logger.Info("[KgBuild] Corpus loaded", "documents", len(docs))

	customWords, err := service.LoadCustomWords(customWordsFile)
	if err != nil {
		return err
	}

	segmenter, err := gse.NewTokenizer(gse.NewTokenizerParams{
		CustomWords: customWords,
	})
	if err != nil {
		return err
	}

	builder, err := kg.NewBuilder(kg.NewBuilderParams{
		Segmenter:   segmenter,
		CustomWords: customWords,
	})
	if err != nil {
		return err
	}
	if err := builder.BuildFromDocuments(ctx, docs); err != nil {
		return err
	}

	stats, err := builder.Statistics()
	if err != nil {
		return err
	}

	fmt.Printf("Entities:       %d (%d from custom dictionary)\n", stats.TotalEntities, stats.CustomEntities)
	fmt.Printf("Relations:      %d (%d distinct types)\n", stats.TotalRelations, stats.RelationTypes)
	fmt.Printf("Graph:          %d nodes, %d edges, avg degree %.2f\n", stats.GraphNodes, stats.GraphEdges, stats.AvgDegree)
	fmt.Println()

	fmt.Printf("Top %d entities by frequency:\n", topN)
	for i, entry := range builder.TopEntities(topN) {
		fmt.Printf("%3d. %s (%d)\n", i+1, entry.Entity, entry.Frequency)
	}

	if outDir == "" {
		return nil
	}
	projection, err := builder.Project(percent)
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(projection, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %q: %w", outDir, err)
	}
	outFile := filepath.Join(outDir, "knowledge_graph.json")
	if err := os.WriteFile(outFile, payload, 0o644); err != nil {
		return fmt.Errorf("write projection payload: %w", err)
	}
	logger.Info("[KgBuild] Projection written", "file", outFile, "percent", percent, "nodes", len(projection.Nodes), "edges", len(projection.Edges))
	return nil
}
