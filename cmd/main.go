package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/chunker"
	"pdf-rag/internal/config"
	"pdf-rag/internal/db"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/helper"
	"pdf-rag/internal/llmservice"
	"pdf-rag/internal/models"
	"pdf-rag/internal/parser"
	"pdf-rag/internal/rag"
	"pdf-rag/internal/transcript"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to the PDF file")
	query := flag.String("query", "", "Ask a single question and exit")
	configPath := flag.String("config", configFilePath, "Path to the config file")
	dryRun := flag.Bool("dry-run", false, "Parse and chunk only, print the chunk preview")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *filePath == "" {
		log.Fatal().Msg("Please provide a PDF file using the -file flag")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	if *dryRun {
		previewChunks(cfg, *filePath)
		return
	}

	session, err := newSession(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing session")
	}
	defer session.Reset()

	ctx := context.Background()
	result, err := session.Ingest(ctx, *filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error processing document")
	}
	fmt.Printf("Successfully processed PDF with %d chunks from %d pages.\n\n", result.Chunks, result.Pages)

	if *query != "" {
		answer, err := session.Ask(ctx, *query)
		if err != nil {
			log.Fatal().Err(err).Msg("Error answering question")
		}
		fmt.Printf("%s\n", answer)
		return
	}

	chatLoop(ctx, session)
}

// newSession wires the pipeline dependencies from config.
func newSession(cfg *config.Config) (*rag.Session, error) {
	loader := parser.NewPDFLoader(cfg.RAG.MaxFileMB)
	splitter := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}

	llm, err := llmservice.NewClient(&cfg.InferLLM)
	if err != nil {
		return nil, err
	}

	var builder models.IndexBuilder
	switch cfg.Store.Type {
	case config.StorePostgres:
		builder = db.NewBuilder(db.Connect(&cfg.Store))
	case config.StoreChromem:
		builder = chromemdb.NewBuilder("")
	default:
		return nil, models.NewConfigError("store.type", fmt.Sprintf("unknown store %q", cfg.Store.Type))
	}

	return rag.NewSession(loader, splitter, embedder, builder, llm, cfg.RAG.TopK), nil
}

func chatLoop(ctx context.Context, session *rag.Session) {
	fmt.Println("Ask questions about the document. Commands: /reset, /save <path>, /quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/reset":
			session.Reset()
			fmt.Println("Session cleared. Ingest a document to continue.")
		case strings.HasPrefix(line, "/save"):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/save"))
			if path == "" {
				path = "transcript.html"
			}
			if err := transcript.Save(path, session.History()); err != nil {
				fmt.Printf("Could not save transcript: %v\n", err)
				continue
			}
			fmt.Printf("Transcript saved to %s\n", path)
		default:
			answer, err := session.Ask(ctx, line)
			if err != nil {
				fmt.Printf("Sorry, that didn't work: %v\n", err)
				continue
			}
			fmt.Printf("%s\n\n", answer)
		}
	}
}

// previewChunks parses and chunks the document without touching any
// external service.
func previewChunks(cfg *config.Config, filePath string) {
	loader := parser.NewPDFLoader(cfg.RAG.MaxFileMB)
	pages, err := loader.Load(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing document")
	}

	splitter := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	chunks := splitter.Chunk(pages)
	log.Info().Int("pages", len(pages)).Int("chunks", len(chunks)).Msg("Parsed document")
	helper.PrettyPrint(chunks)
}
