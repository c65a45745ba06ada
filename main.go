package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"datapilot/config"
)

func main() {
	configDir := flag.String("config", ".", "directory containing config.json")
	csvPath := flag.String("csv", "", "CSV file to load into the session")
	modelID := flag.String("model", "", "chat model for this session (default: configured model)")
	strategy := flag.String("strategy", "linear", "orchestration strategy: linear or graph")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", WrapOperationError("load config", err))
		os.Exit(1)
	}
	if cfg.DataCacheDir == "" {
		cfg.DataCacheDir = *configDir
	}

	app := NewApp(cfg, nil)
	defer app.Shutdown()

	ctx := context.Background()
	sessionID, err := app.CreateSession(ctx, *modelID, *strategy)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating session:", err)
		os.Exit(1)
	}

	if *csvPath != "" {
		data, err := os.ReadFile(*csvPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", WrapOperationErrorf("read CSV file %q", err, *csvPath))
			os.Exit(1)
		}
		summary, err := app.IngestCSV(sessionID, string(data))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error ingesting CSV:", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %s: %d rows, %d columns\n", filepath.Base(*csvPath), summary.RowCount, len(summary.Columns))
		for _, col := range summary.Columns {
			fmt.Printf("  %s (%s)\n", col.Name, col.Type)
		}
	}

	fmt.Println("Type a question, or \"exit\" to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := app.Chat(ctx, sessionID, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}
		fmt.Println(reply.Text)
		if reply.Artifact != nil {
			name := fmt.Sprintf("chart_%s.html", reply.Artifact.GeneratedAt.Format("20060102_150405"))
			if err := os.WriteFile(name, []byte(reply.Artifact.HTML), 0644); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", WrapOperationErrorf("save chart to %s", err, name))
			} else {
				fmt.Println("Chart saved to", name)
			}
		}
	}
}
