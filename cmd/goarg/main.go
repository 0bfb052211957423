package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/goarg"
	"github.com/reoring/goarg/i18n"
	"github.com/reoring/goarg/internal/tagx"
	"github.com/reoring/goarg/rules"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "config":
		configCmd(os.Args[2:])
	case "check":
		os.Exit(checkCmd(os.Args[2:]))
	case "messages":
		messagesCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "goarg CLI\n\nUsage:\n  goarg config [-env .env] [-f goarg.yaml]\n  goarg check -rules rules.yaml -in input.json [-lang ja]\n  goarg messages [-lang ja]\n\nNotes:\n  - rules files map field names to rule strings, e.g. `email: required|email`.\n  - check exits 1 when validation fails and prints the messages as JSON.")
}

// configCmd prints the effective configuration as YAML.
func configCmd(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	var envFile, file string
	fs.StringVar(&envFile, "env", "", "dotenv file loaded before reading GOARG_* variables")
	fs.StringVar(&file, "f", "", "YAML config file; takes precedence over the environment")
	_ = fs.Parse(args)

	cfg, err := loadConfig(envFile, file)
	if err != nil {
		fatalf("config: %v", err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		fatalf("config: %v", err)
	}
	_, _ = os.Stdout.Write(out)
}

func loadConfig(envFile, file string) (goarg.Config, error) {
	if file != "" {
		return goarg.LoadConfigFile(file)
	}
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	if err := goarg.LoadDotEnv(files...); err != nil {
		return goarg.Config{}, err
	}
	cfg, err := goarg.LoadConfigFromEnvironment()
	if err != nil {
		return goarg.Config{}, err
	}
	return cfg, cfg.Validate()
}

// checkCmd validates a JSON or YAML document against a rules file and
// returns the process exit code.
func checkCmd(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var rulesFile, in, lang string
	fs.StringVar(&rulesFile, "rules", "", "YAML file mapping field names to rule strings")
	fs.StringVar(&in, "in", "", "input document (.json, .yaml or .yml)")
	fs.StringVar(&lang, "lang", "", "message language (defaults to GOARG_LANGUAGE)")
	_ = fs.Parse(args)
	if rulesFile == "" || in == "" {
		fs.Usage()
		return 2
	}

	if lang == "" {
		cfg, err := goarg.LoadConfigFromEnvironment()
		if err != nil {
			fatalf("check: %v", err)
		}
		lang = cfg.Language
	}
	data, err := readDocument(in)
	if err != nil {
		fatalf("check: %v", err)
	}
	set, msgs, err := readRules(rulesFile)
	if err != nil {
		fatalf("check: %v", err)
	}

	eng := rules.New()
	eng.Translator = i18n.Dictionary(lang)
	bag, err := eng.Validate(context.Background(), data, set, msgs)
	if err != nil {
		fatalf("check: %v", err)
	}
	if bag.IsEmpty() {
		fmt.Println("ok")
		return 0
	}
	b, err := json.MarshalIndent(bag, "", "  ")
	if err != nil {
		fatalf("check: %v", err)
	}
	fmt.Println(string(b))
	return 1
}

func readDocument(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return goarg.DecodeYAML(b)
	default:
		return goarg.DecodeJSON(b)
	}
}

// ruleSet is the on-disk shape: field -> "rule|rule:param", plus optional
// messages keyed "field.rule".
type ruleSet struct {
	Rules    map[string]string `yaml:"rules"`
	Messages map[string]string `yaml:"messages"`
}

func readRules(path string) (map[string][]goarg.Rule, map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var rf ruleSet
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(rf.Rules) == 0 {
		return nil, nil, fmt.Errorf("%s: no rules", path)
	}
	out := make(map[string][]goarg.Rule, len(rf.Rules))
	for field, list := range rf.Rules {
		for _, r := range tagx.SplitRules(list) {
			out[field] = append(out[field], r)
		}
	}
	return out, rf.Messages, nil
}

// messagesCmd prints the built-in message dictionary of a language.
func messagesCmd(args []string) {
	fs := flag.NewFlagSet("messages", flag.ExitOnError)
	var lang string
	fs.StringVar(&lang, "lang", goarg.DefaultLanguage, "language: "+strings.Join(i18n.Languages(), ", "))
	_ = fs.Parse(args)

	tr := i18n.Dictionary(lang)
	for _, code := range i18n.Codes() {
		fmt.Printf("%-24s %s\n", code, tr.Message(code, nil))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
