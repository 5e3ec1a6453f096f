package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpcc-systems/Medley/engine"
	"github.com/hpcc-systems/Medley/ids"
	"github.com/hpcc-systems/Medley/index"
)

func newQueryByIDCommand() *cobra.Command {
	var (
		queryIDs []int64
		hash2ID  string
		id2Hash  string
		match2ID string
		id2Match string
	)

	cmd := &cobra.Command{
		Use:   "query-by-id",
		Short: "Find every id fuzzy-matched to the given entity ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			given := make([]ids.ID, len(queryIDs))
			for i, v := range queryIDs {
				given[i] = ids.ID(v)
			}

			related, err := engine.FindRelatedByIds(given, index.Paths{
				Hash2ID:  pathOrDefault(hash2ID, jobConfig.Paths.Hash2ID),
				ID2Hash:  pathOrDefault(id2Hash, jobConfig.Paths.ID2Hash),
				Match2ID: pathOrDefault(match2ID, jobConfig.Paths.Match2ID),
				ID2Match: pathOrDefault(id2Match, jobConfig.Paths.ID2Match),
			})
			if err != nil {
				return err
			}

			for _, r := range related {
				fmt.Printf("%d\t%d\n", r.GivenID, r.ID)
			}
			return nil
		},
	}

	cmd.Flags().Int64SliceVar(&queryIDs, "id", nil, "entity id to look up (repeatable)")
	cmd.Flags().StringVar(&hash2ID, "hash2id", "", "Hash2ID index path")
	cmd.Flags().StringVar(&id2Hash, "id2hash", "", "ID2Hash index path")
	cmd.Flags().StringVar(&match2ID, "match2id", "", "Match2ID index path")
	cmd.Flags().StringVar(&id2Match, "id2match", "", "ID2Match index path")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
