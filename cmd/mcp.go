package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/rustdown/internal/cas"
	"github.com/jcdickinson/rustdown/internal/config"
	"github.com/jcdickinson/rustdown/internal/db"
	"github.com/jcdickinson/rustdown/internal/mcp"
)

var mcpOutput string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the extracted documentation tree over MCP on stdio",
	Run:   runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpOutput, "output", "docs", "output root the pages were extracted into")
}

func runMCP(cmd *cobra.Command, args []string) {
	index, err := db.New(config.DBPath())
	if err != nil {
		log.Fatalf("opening index: %v", err)
	}
	defer index.Close()

	server := mcp.NewServer(index, mcpOutput, cas.NewStore(config.PageStoreDir()))
	if err := server.Run(); err != nil {
		log.Fatalf("mcp server failed: %v", err)
	}
}
