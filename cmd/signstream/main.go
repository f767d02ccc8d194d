package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/tiger/signstream/internal/assets"
	"github.com/tiger/signstream/internal/batch"
	"github.com/tiger/signstream/internal/config"
	"github.com/tiger/signstream/internal/pipeline"
	"github.com/tiger/signstream/providers/parser/spacyhttp"
	"github.com/tiger/signstream/providers/recognition/deepgram"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "signstream: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stdout)
		return nil
	}
	switch args[0] {
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	case "translate":
		return runTranslate(args[1:], stdout, stderr)
	case "stream":
		return runStream(args[1:], stdout, stderr)
	case "validate-assets":
		return runValidateAssets(args[1:], stdout, stderr)
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "signstream usage:")
	_, _ = fmt.Fprintln(w, "  signstream translate [-config path] [-text sentence | -in file] [-out file]")
	_, _ = fmt.Fprintln(w, "  signstream stream [-config path]")
	_, _ = fmt.Fprintln(w, "  signstream validate-assets [-config path]")
	_, _ = fmt.Fprintln(w, "Examples:")
	_, _ = fmt.Fprintln(w, "  signstream translate -text \"If it rains, I will stay home.\"")
	_, _ = fmt.Fprintln(w, "  signstream stream -config signstream.yaml")
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildResolver(cfg config.Config) (*assets.Resolver, *assets.Library, error) {
	lib, err := assets.NewLibrary(cfg.Assets.Dir)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Assets.Manifest != "" {
		manifest, err := assets.LoadManifest(cfg.Assets.Manifest)
		if err != nil {
			return nil, nil, err
		}
		if err := lib.ApplyManifest(manifest); err != nil {
			return nil, nil, err
		}
	}
	resolver, err := assets.NewResolver(lib)
	if err != nil {
		return nil, nil, err
	}
	return resolver, lib, nil
}

func buildParser(cfg config.Config) (*spacyhttp.Adapter, error) {
	return spacyhttp.New(spacyhttp.Config{
		BaseURL: cfg.Parser.URL,
		Timeout: cfg.Parser.Timeout.Std(),
	})
}

func runTranslate(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("translate", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to a signstream YAML config")
	text := flags.String("text", "", "text to translate")
	inPath := flags.String("in", "", "file to read the input text from")
	outPath := flags.String("out", "", "file to write the JSON result to (default stdout)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	input := *text
	if input == "" && *inPath != "" {
		raw, err := os.ReadFile(*inPath)
		if err != nil {
			return fmt.Errorf("read input file: %w", err)
		}
		input = string(raw)
	}
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("nothing to translate: pass -text or -in")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	resolver, _, err := buildResolver(cfg)
	if err != nil {
		return err
	}
	parser, err := buildParser(cfg)
	if err != nil {
		return err
	}
	converter, err := batch.NewConverter(parser, resolver, batch.Config{Logger: cfg.Logger()})
	if err != nil {
		return err
	}

	doc, err := converter.Convert(context.Background(), input)
	if err != nil {
		return err
	}

	out := stdout
	if *outPath != "" {
		file, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer file.Close()
		out = file
	}
	return batch.WriteJSON(out, doc)
}

func runStream(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("stream", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to a signstream YAML config")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	resolver, _, err := buildResolver(cfg)
	if err != nil {
		return err
	}
	parser, err := buildParser(cfg)
	if err != nil {
		return err
	}
	recognizer, err := deepgram.NewAdapter(deepgram.Config{
		APIKey:   os.Getenv(cfg.Speech.APIKeyEnv),
		Endpoint: cfg.Speech.Endpoint,
		Language: cfg.Speech.Language,
		Model:    cfg.Speech.Model,
	})
	if err != nil {
		return err
	}

	log := cfg.Logger()
	observers := pipeline.Observers{
		OnTranscript: func(text string) {
			fmt.Fprintf(stdout, "heard: %s\n", text)
		},
		OnISLText: func(tokens []string) {
			fmt.Fprintf(stdout, "signs: %s\n", strings.Join(tokens, " "))
		},
		OnError: func(stage string, err error) {
			fmt.Fprintf(stderr, "%s error: %v\n", stage, err)
		},
	}
	session, err := pipeline.NewSession(recognizer, parser, resolver, observers, pipeline.Config{
		VideoQueueCapacity: cfg.Pipeline.VideoQueueCapacity,
		TextQueueCapacity:  cfg.Pipeline.TextQueueCapacity,
		PollInterval:       cfg.Pipeline.PollInterval.Std(),
		Logger:             log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Stop()
	go func() {
		<-ctx.Done()
		session.Stop()
	}()

	for {
		clip, err := session.NextClip(cfg.Pipeline.PollInterval.Std())
		if errors.Is(err, pipeline.ErrQueueClosed) {
			return nil
		}
		if errors.Is(err, pipeline.ErrQueueTimeout) {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "play: %s (%.1fs)\n", clip.Path, clip.Seconds)
	}
}

func runValidateAssets(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("validate-assets", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to a signstream YAML config")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	_, lib, err := buildResolver(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "asset library ok: %d word clips, %d letter clips in %s\n",
		lib.WordCount(), lib.LetterCount(), lib.Dir())
	return nil
}
