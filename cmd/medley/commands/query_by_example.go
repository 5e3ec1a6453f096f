package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpcc-systems/Medley/engine"
	"github.com/hpcc-systems/Medley/hasher"
	"github.com/hpcc-systems/Medley/index"
	"github.com/hpcc-systems/Medley/source"
)

func newQueryByExampleCommand() *cobra.Command {
	var (
		sourcePath   string
		table        string
		idColumn     string
		directives   []string
		editDistance int
		hash2ID      string
		id2Hash      string
		match2ID     string
		id2Match     string
	)

	cmd := &cobra.Command{
		Use:   "query-by-example",
		Short: "Find every id fuzzy-matched to a set of fresh example records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(directives) == 0 {
				directives = jobConfig.Directives
			}

			src, err := source.Open(sourcePath)
			if err != nil {
				return err
			}
			defer src.Close()

			rows, err := src.ReadRecords(table, idColumn)
			if err != nil {
				return err
			}

			examples := make([]hasher.Record, len(rows))
			for i, r := range rows {
				examples[i] = r
			}

			out, err := engine.FindRelatedByExample(examples, directives, editDistance, index.Paths{
				Hash2ID:  pathOrDefault(hash2ID, jobConfig.Paths.Hash2ID),
				ID2Hash:  pathOrDefault(id2Hash, jobConfig.Paths.ID2Hash),
				Match2ID: pathOrDefault(match2ID, jobConfig.Paths.Match2ID),
				ID2Match: pathOrDefault(id2Match, jobConfig.Paths.ID2Match),
			})
			if err != nil {
				return err
			}

			for _, id := range out {
				fmt.Println(id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "sqlite3 database file holding the example records")
	cmd.Flags().StringVar(&table, "table", "records", "table name to read example records from")
	cmd.Flags().StringVar(&idColumn, "id-column", "id", "column holding the example row's id (unused by the query, but required by the source reader)")
	cmd.Flags().StringSliceVar(&directives, "directive", nil, "directive string (repeatable; OR-combined)")
	cmd.Flags().IntVar(&editDistance, "edit-distance", 0, "edit distance for the example probe (0 avoids over-fuzzing)")
	cmd.Flags().StringVar(&hash2ID, "hash2id", "", "Hash2ID index path")
	cmd.Flags().StringVar(&id2Hash, "id2hash", "", "ID2Hash index path")
	cmd.Flags().StringVar(&match2ID, "match2id", "", "Match2ID index path")
	cmd.Flags().StringVar(&id2Match, "id2match", "", "ID2Match index path")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}
