package cmd

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/rustdown/internal/config"
	"github.com/jcdickinson/rustdown/internal/db"
)

var listPackage string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed packages and their extracted pages",
	Run:   runList,
}

func init() {
	listCmd.Flags().StringVar(&listPackage, "package", "", "show the pages of a single package")
}

func runList(cmd *cobra.Command, args []string) {
	index, err := db.New(config.DBPath())
	if err != nil {
		log.Fatalf("opening index: %v", err)
	}
	defer index.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if listPackage != "" {
		pages, err := index.ListPages(listPackage)
		if err != nil {
			log.Fatalf("listing pages: %v", err)
		}
		fmt.Fprintln(w, "PATH\tKIND\tFILE")
		for _, p := range pages {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Path, p.Kind, p.File)
		}
		return
	}

	packages, err := index.ListPackages()
	if err != nil {
		log.Fatalf("listing packages: %v", err)
	}
	fmt.Fprintln(w, "PACKAGE\tVERSION\tPAGES\tEXTRACTED")
	for _, p := range packages {
		count, err := index.CountPages(p.ID)
		if err != nil {
			log.Fatalf("counting pages: %v", err)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.Name, p.Version, count, p.ExtractedAt.Format("2006-01-02 15:04"))
	}
}
