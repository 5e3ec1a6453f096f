package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hpcc-systems/Medley/engine"
	"github.com/hpcc-systems/Medley/index"
	"github.com/hpcc-systems/Medley/source"
)

func newBuildIndexCommand() *cobra.Command {
	var (
		sourcePath      string
		table           string
		idColumn        string
		directives      []string
		maxEditDistance int
		hash2ID         string
		id2Hash         string
		match2ID        string
		id2Match        string
	)

	cmd := &cobra.Command{
		Use:   "build-index",
		Short: "Build all four fuzzy-match index files from a record source",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(directives) == 0 {
				directives = jobConfig.Directives
			}
			if maxEditDistance == 0 && jobConfig.MaxEditDistance != 0 {
				maxEditDistance = jobConfig.MaxEditDistance
			}

			var progress *pterm.SpinnerPrinter
			if !jsonOutput {
				progress, _ = pterm.DefaultSpinner.Start("reading source records")
			}

			src, err := source.Open(sourcePath)
			if err != nil {
				return err
			}
			defer src.Close()

			records, err := src.ReadRecords(table, idColumn)
			if err != nil {
				return err
			}

			rows := make([]engine.Row, len(records))
			for i, r := range records {
				rows[i] = engine.Row{ID: r.ID, Record: r}
			}

			if progress != nil {
				progress.UpdateText("hashing and clustering records")
			}

			err = engine.BuildAllIndexes(engine.BuildInput{
				Rows:            rows,
				DirectiveTexts:  directives,
				MaxEditDistance: maxEditDistance,
				Paths: index.Paths{
					Hash2ID:  pathOrDefault(hash2ID, jobConfig.Paths.Hash2ID),
					ID2Hash:  pathOrDefault(id2Hash, jobConfig.Paths.ID2Hash),
					Match2ID: pathOrDefault(match2ID, jobConfig.Paths.Match2ID),
					ID2Match: pathOrDefault(id2Match, jobConfig.Paths.ID2Match),
				},
			})
			if progress != nil {
				if err != nil {
					progress.Fail(err)
				} else {
					progress.Success("indexes published")
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "sqlite3 database file to read records from")
	cmd.Flags().StringVar(&table, "table", "records", "table name to read records from")
	cmd.Flags().StringVar(&idColumn, "id-column", "id", "column holding the entity id")
	cmd.Flags().StringSliceVar(&directives, "directive", nil, "directive string (repeatable; OR-combined)")
	cmd.Flags().IntVar(&maxEditDistance, "max-edit-distance", 0, "maximum edit distance for group neighborhoods")
	cmd.Flags().StringVar(&hash2ID, "hash2id", "", "Hash2ID index path")
	cmd.Flags().StringVar(&id2Hash, "id2hash", "", "ID2Hash index path")
	cmd.Flags().StringVar(&match2ID, "match2id", "", "Match2ID index path")
	cmd.Flags().StringVar(&id2Match, "id2match", "", "ID2Match index path")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func pathOrDefault(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}
