// Package main is the entry point for the flywave-style tool: evaluate
// style expressions from the command line or serve the evaluation API.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flywave/flywave-style/pkg/api"
	"github.com/flywave/flywave-style/pkg/expr"
	"github.com/flywave/flywave-style/pkg/store"
	"github.com/flywave/flywave-style/pkg/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "flywave-style",
	Short: "flywave style expression evaluator",
}

var evalCmd = &cobra.Command{
	Use:   "eval <expr-file>",
	Short: "Evaluate a style expression against an environment",
	Long: `Evaluate a style expression document (JSON array form, JSON or YAML
encoded) against a feature environment and print the result as JSON.
Pass "-" to read the expression from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the expression evaluation HTTP service",
	RunE:  runServe,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("flywave-style version {{.Version}}\n")

	evalCmd.Flags().String("env", "", "Environment file (JSON or YAML map of variable bindings)")
	evalCmd.Flags().Float64("zoom", 0, "Bind $zoom in the environment")
	evalCmd.Flags().Float64("ppi", 0, "Bind $ppi in the environment")
	evalCmd.Flags().Bool("dynamic", false, "Evaluate in dynamic scope (default value scope)")
	evalCmd.Flags().Bool("strict", false, "Fail ordering comparisons on mismatched operand types")

	serveCmd.Flags().Int("port", 0, "HTTP server port (default 8687, env PORT)")
	serveCmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")

	rootCmd.AddCommand(evalCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readDocument decodes a JSON or YAML document into a plain Go value.
// YAML is a superset of JSON, so one decoder covers both encodings.
func readDocument(path string) (interface{}, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid document %s: %w", path, err)
	}
	return doc, nil
}

func runEval(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	parsed, err := expr.FromJSON(doc)
	if err != nil {
		return err
	}

	bindings := make(map[string]types.Value)
	if envPath, _ := cmd.Flags().GetString("env"); envPath != "" {
		envDoc, err := readDocument(envPath)
		if err != nil {
			return err
		}
		m, ok := envDoc.(map[string]interface{})
		if !ok {
			return fmt.Errorf("environment document must be a map, got %T", envDoc)
		}
		for k, v := range m {
			bindings[k] = types.FromGo(v)
		}
	}
	if cmd.Flags().Changed("zoom") {
		zoom, _ := cmd.Flags().GetFloat64("zoom")
		bindings[expr.VarZoom] = types.NewNumber(zoom)
	}
	if cmd.Flags().Changed("ppi") {
		ppi, _ := cmd.Flags().GetFloat64("ppi")
		bindings[expr.VarPPI] = types.NewNumber(ppi)
	}

	scope := expr.ValueScope
	if dynamic, _ := cmd.Flags().GetBool("dynamic"); dynamic {
		scope = expr.DynamicScope
	}
	strict, _ := cmd.Flags().GetBool("strict")

	result, err := expr.Evaluate(expr.NewMapEnv(bindings), parsed,
		expr.WithScope(scope),
		expr.WithStrictComparisons(strict),
	)
	if err != nil {
		return err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	port := envOrDefault("PORT", "8687")
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		port = fmt.Sprintf("%d", v)
	}
	host := envOrDefault("HOST", "0.0.0.0")
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		host = v
	}
	addr := fmt.Sprintf("%s:%s", host, port)

	server := api.New(store.New())

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down expression service...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Expression service listening on %s", addr)
	return server.Listen(addr)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
