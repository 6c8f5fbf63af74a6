// Command mcp exposes the clinical check tools as an MCP server over
// stdio, so MCP clients can run the checks directly against openFDA
// without going through the supervision loop.
//
// Usage:
//
//	go run ./cmd/mcp
//
// Configuration for an MCP client:
//
//	{
//	    "mcpServers": {
//	        "pharma-checks": {
//	            "command": "go",
//	            "args": ["run", "./cmd/mcp"],
//	            "cwd": "/path/to/pharma-sidekick"
//	        }
//	    }
//	}
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/codypharm/pharma-sidekick/checks"
	"github.com/codypharm/pharma-sidekick/fda"
	"github.com/codypharm/pharma-sidekick/mcp"
)

func main() {
	godotenv.Load()

	var fdaOpts []fda.Option
	if key := os.Getenv("OPENFDA_API_KEY"); key != "" {
		fdaOpts = append(fdaOpts, fda.WithAPIKey(key))
	}
	registry := checks.NewRegistry(fda.NewClient(fdaOpts...))

	if err := mcp.ServeStdio(registry,
		mcp.WithName("pharma-checks"),
		mcp.WithVersion("1.0.0"),
	); err != nil {
		log.Fatal(err)
	}
}
