package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jumahq/pesaflow/internal/anomaly"
	"github.com/jumahq/pesaflow/internal/categorize"
	"github.com/jumahq/pesaflow/internal/config"
	"github.com/jumahq/pesaflow/internal/domain"
	"github.com/jumahq/pesaflow/internal/extract"
	"github.com/jumahq/pesaflow/internal/learned"
	"github.com/jumahq/pesaflow/internal/logger"
	"github.com/jumahq/pesaflow/internal/pipeline"
	"github.com/jumahq/pesaflow/internal/reconcile"
	"github.com/jumahq/pesaflow/internal/validate"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		runExtract(log)
	case "scan":
		runScan(log)
	case "reconcile":
		runReconcile(log)
	case "associations":
		runAssociations(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("PesaFlow CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  extract       Extract transactions from statement text")
	fmt.Println("  scan          Run anomaly checks over a transaction file")
	fmt.Println("  reconcile     Reconcile transactions against book entries")
	fmt.Println("  associations  Dump learned counterparty associations")
	fmt.Println("  help          Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runExtract(log zerolog.Logger) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	file := fs.String("file", "", "Statement text file (defaults to stdin)")
	useAI := fs.Bool("ai", false, "Use the AI extractor (requires GEMINI_API_KEY)")
	fs.Parse(os.Args[2:])

	text, err := readInput(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read statement text")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var extractor extract.Extractor = extract.NewPatternExtractor()
	if *useAI {
		cfg, err := config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		extractor, err = extract.NewAIExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build AI extractor")
		}
	}

	pipe := pipeline.New(log,
		&pipeline.ExtractStep{Extractor: extractor},
		&pipeline.ValidateStep{Validator: validate.New(log)},
		&pipeline.CategorizeStep{Categorizer: categorize.New(log)},
	)

	state := &pipeline.PipelineState{RawText: string(text)}
	if err := pipe.Run(ctx, state); err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	printJSON(state.Transactions)
}

func runScan(log zerolog.Logger) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	file := fs.String("file", "", "JSON file with a transaction array (defaults to stdin)")
	baseline := fs.Float64("baseline", 0, "Average transaction amount for the business")
	sensitivity := fs.String("sensitivity", "medium", "Sensitivity: high, medium, or low")
	fs.Parse(os.Args[2:])

	var txs []domain.Transaction
	if err := readJSON(*file, &txs); err != nil {
		log.Fatal().Err(err).Msg("Failed to read transactions")
	}

	var profile *domain.BusinessProfile
	if *baseline > 0 {
		profile = &domain.BusinessProfile{
			AverageTransaction: decimal.NewFromFloat(*baseline),
			HomeNetwork:        domain.NetworkHome,
		}
	}

	report := anomaly.New(log).DetectBatch(txs, profile, anomaly.Sensitivity(*sensitivity))
	printJSON(report)
}

func runReconcile(log zerolog.Logger) {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	txFile := fs.String("transactions", "", "JSON file with a transaction array")
	bookFile := fs.String("books", "", "JSON file with a book entry array")
	fs.Parse(os.Args[2:])

	if *txFile == "" || *bookFile == "" {
		log.Fatal().Msg("Usage: cli reconcile -transactions FILE -books FILE")
	}

	var txs []domain.Transaction
	if err := readJSON(*txFile, &txs); err != nil {
		log.Fatal().Err(err).Msg("Failed to read transactions")
	}
	var entries []domain.BookEntry
	if err := readJSON(*bookFile, &entries); err != nil {
		log.Fatal().Err(err).Msg("Failed to read book entries")
	}

	printJSON(reconcile.New(log).Reconcile(txs, entries))
}

func runAssociations(log zerolog.Logger) {
	fs := flag.NewFlagSet("associations", flag.ExitOnError)
	path := fs.String("path", "./data/learned", "Badger data directory")
	fs.Parse(os.Args[2:])

	store, err := learned.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open learned store")
	}
	defer store.Close()

	all, err := store.Associations(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read associations")
	}
	printJSON(all)
}

func readInput(file string) ([]byte, error) {
	if file == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func readJSON(file string, out interface{}) error {
	data, err := readInput(file)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
