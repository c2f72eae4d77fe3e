package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/graphgate/internal/store"
	"github.com/spf13/cobra"
)

var (
	ingestTriples   string
	ingestDocuments string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load triples and documents into the knowledge store",
	Long: `Ingest loads knowledge graph triples and source documents from JSONL
files into the SQLite store used for retrieval.

Triple lines:
  {"subject_id": "D003924", "subject_label": "Type 2 diabetes", "predicate": "treated_by",
   "object_id": "D007328", "object_label": "Insulin", "source_id": "d042", "weight": 0.9}

Document lines:
  {"id": "d042", "title": "Insulin therapy", "abstract": "..."}

Example:
  graphgate ingest --triples kg.jsonl --documents docs.jsonl`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestTriples, "triples", "", "JSONL file of graph triples")
	ingestCmd.Flags().StringVar(&ingestDocuments, "documents", "", "JSONL file of source documents")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestTriples == "" && ingestDocuments == "" {
		return fmt.Errorf("nothing to ingest: pass --triples and/or --documents")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := cmd.Context()

	if ingestTriples != "" {
		triples, err := store.LoadTriplesJSONL(ingestTriples)
		if err != nil {
			return fmt.Errorf("load triples: %w", err)
		}
		if err := st.InsertTriples(ctx, triples); err != nil {
			return fmt.Errorf("insert triples: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Ingested %d triples from %s\n", len(triples), ingestTriples)
	}

	if ingestDocuments != "" {
		docs, err := store.LoadDocumentsJSONL(ingestDocuments)
		if err != nil {
			return fmt.Errorf("load documents: %w", err)
		}
		if err := st.InsertDocuments(ctx, docs); err != nil {
			return fmt.Errorf("insert documents: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Ingested %d documents from %s\n", len(docs), ingestDocuments)
	}

	return nil
}
