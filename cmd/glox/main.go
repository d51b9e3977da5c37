package main

// This is an interpreter for the Lox programming language written in Go.

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"

	"github.com/lox-lang/glox/internal/lox"
)

const historyFileName = ".glox_history"

var log = logrus.New()

func main() {
	debug := flag.Bool("debug", false, "log the interpreter phases")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: glox [script]")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.InfoLevel)
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	args := flag.Args()
	if len(args) > 1 {
		flag.Usage()
		os.Exit(64)
	}

	reporter := lox.NewSimpleReporter(os.Stderr)
	interpreter := lox.NewInterpreter(os.Stdout, reporter)
	if len(args) != 1 {
		runPrompt(interpreter, reporter)
	} else {
		runFile(args[0], interpreter, reporter)
	}
}

func run(
	script string,
	interpreter *lox.Interpreter,
	reporter lox.Reporter,
	isREPL bool,
) {
	log.Debug("scanning")
	scanner := lox.NewScanner([]rune(script), reporter)
	tokens := scanner.Scan()
	log.WithField("tokens", len(tokens)).Debug("parsing")
	var parser *lox.Parser
	if isREPL {
		parser = lox.NewREPLParser(tokens, reporter)
	} else {
		parser = lox.NewParser(tokens, reporter)
	}
	statements := parser.Parse()
	if reporter.HadError() {
		return
	}
	log.WithField("statements", len(statements)).Debug("resolving")
	resolver := lox.NewResolver(interpreter, reporter)
	resolver.Resolve(statements)
	if reporter.HadError() {
		return
	}
	log.Debug("interpreting")
	interpreter.Interpret(statements)
}

// Run the interpreter in REPL mode
func runPrompt(interpreter *lox.Interpreter, reporter lox.Reporter) {
	prompt := liner.NewLiner()
	defer prompt.Close()
	prompt.SetCtrlCAborts(true)

	historyPath := historyFilePath()
	if f, err := os.Open(historyPath); err == nil {
		prompt.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			prompt.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		input, err := prompt.Prompt("> ")
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if input != "" {
			prompt.AppendHistory(input)
		}
		run(input, interpreter, reporter, true)
		reporter.Reset()
	}
}

// Run the given file as script
func runFile(fpath string, interpreter *lox.Interpreter, reporter lox.Reporter) {
	bytes, err := os.ReadFile(fpath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	run(string(bytes), interpreter, reporter, false)
	exitIf(reporter.HadError(), 65)
	exitIf(reporter.HadRuntimeError(), 70)
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFileName
	}
	return filepath.Join(home, historyFileName)
}

func exitIf(cond bool, status int) {
	if cond {
		os.Exit(status)
	}
}
