package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/AdguardTeam/golibs/log"
	goFlags "github.com/jessevdk/go-flags"
	"github.com/shackerd/urlrewrite"
	"github.com/shackerd/urlrewrite/rulelist"
)

// Options -- console arguments
type Options struct {
	// Verbose - should we write debug-level log
	Verbose bool `short:"v" long:"verbose" description:"Verbose output (optional)." optional:"yes" optional-value:"true"`

	// LogOutput - path to the log file
	LogOutput string `short:"o" long:"output" description:"Path to the log file. If not set, it writes to stderr." default:""`

	// Rules - paths to the rewrite rule files
	Rules []string `short:"r" long:"rules" description:"Path to the rewrite rules file. Can be specified multiple times." required:"true"`

	// Args - positional arguments
	Args struct {
		// URIs - the URIs to evaluate. When empty, URIs are read from
		// stdin, one per line.
		URIs []string `positional-arg-name:"uri"`
	} `positional-args:"yes"`
}

func main() {
	var options Options
	var parser = goFlags.NewParser(&options, goFlags.Default)

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*goFlags.Error); ok && flagsErr.Type == goFlags.ErrHelp {
			os.Exit(0)
		} else {
			os.Exit(1)
		}
	}

	run(options)
}

func run(options Options) {
	if options.Verbose {
		log.SetLevel(log.DEBUG)
	}
	if options.LogOutput != "" {
		// nolint: gosec
		file, err := os.OpenFile(options.LogOutput, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("cannot create a log file: %s", err)
		}
		defer file.Close() //nolint
		log.SetOutput(file)
	}

	engine := buildEngine(options)
	log.Debug("loaded %d rules", engine.RulesCount)

	if len(options.Args.URIs) > 0 {
		for _, uri := range options.Args.URIs {
			evaluate(engine, uri)
		}

		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		evaluate(engine, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("reading stdin: %v", err)
	}
}

// buildEngine builds a rewrite engine from the rule files.
func buildEngine(options Options) *urlrewrite.Engine {
	var lists []rulelist.RuleList
	for listID, path := range options.Rules {
		list, err := rulelist.NewFileRuleList(listID, path)
		if err != nil {
			log.Fatalf("cannot open rules: %v", err)
		}
		lists = append(lists, list)
	}

	storage, err := rulelist.NewRuleStorage(lists)
	if err != nil {
		log.Fatalf("cannot initialize rule storage: %v", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Error("closing storage: %v", err)
		}
	}()

	engine, err := urlrewrite.NewEngine(storage)
	if err != nil {
		log.Fatalf("cannot parse rules: %v", err)
	}

	return engine
}

// evaluate runs one URI through the engine and prints the outcome.
func evaluate(engine *urlrewrite.Engine, uri string) {
	res, err := engine.Rewrite(uri)
	if err != nil {
		fmt.Printf("error %s: %v\n", uri, err)

		return
	}

	switch res.Kind {
	case urlrewrite.Rewritten:
		fmt.Printf("rewritten %s -> %s\n", uri, res.URI)
	case urlrewrite.Redirected:
		fmt.Printf("redirected %d %s -> %s\n", res.Status, uri, res.URI)
	case urlrewrite.Forbidden:
		fmt.Printf("forbidden %s\n", uri)
	default:
		fmt.Printf("unchanged %s\n", uri)
	}
}
