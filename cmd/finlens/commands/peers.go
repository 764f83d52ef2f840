package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/factor"
	"github.com/finlens/backend/internal/peer"
)

// peersCmd runs the cross-sectional operations over a cohort.
var peersCmd = &cobra.Command{
	Use:   "peers [metric] [period] [entity...]",
	Short: "Normalize or rank a metric across a peer cohort",
	Long: `Compute z-scores (default) or a ranking (--rank) for one metric
across a set of entities sharing a period, or factor exposure vectors
for the cohort (--factors, metric ignored).

Example:
  go run ./cmd/finlens peers net_margin 2023Q4 ACME BETA GAMMA
  go run ./cmd/finlens peers roe 2023Q4 ACME BETA GAMMA --rank
  go run ./cmd/finlens peers - 2023Q4 ACME BETA GAMMA --factors`,
	Args: cobra.MinimumNArgs(3),
	RunE: runPeers,
}

var (
	peersRank    bool
	peersFactors bool
)

func init() {
	rootCmd.AddCommand(peersCmd)

	peersCmd.Flags().BoolVar(&peersRank, "rank", false, "rank instead of normalizing")
	peersCmd.Flags().BoolVar(&peersFactors, "factors", false, "compute factor exposure vectors")
}

func runPeers(cmd *cobra.Command, args []string) error {
	metric := args[0]
	period, err := contracts.ParsePeriod(args[1])
	if err != nil {
		return err
	}
	entities := args[2:]

	_, log, profile, source, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	peerSet := &contracts.PeerSet{Period: period}
	for _, id := range entities {
		s, err := source.Load(ctx, id, period)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("no snapshot for %s at %s", id, period)
		}
		peerSet.Snapshots = append(peerSet.Snapshots, s)
	}

	normalizer := peer.NewNormalizer(profile.Peer, log)

	switch {
	case peersFactors:
		histories := make(map[string][]*contracts.Snapshot, len(entities))
		for _, id := range entities {
			series, err := source.LoadSeries(ctx, id)
			if err != nil {
				return err
			}
			var history []*contracts.Snapshot
			for _, s := range series {
				if s.Period.Before(period) {
					history = append(history, s)
				}
			}
			histories[id] = history
		}
		engine := factor.NewEngine(profile.Factor, normalizer, log)
		vectors, err := engine.Compute(ctx, peerSet, histories)
		if err != nil {
			return err
		}
		clipped := make(map[string]map[string]contracts.Metric, len(vectors))
		for id, v := range vectors {
			clipped[id] = v.Clipped(profile.Factor.DisplayClip)
		}
		return printJSON(map[string]interface{}{
			"display_clip": profile.Factor.DisplayClip,
			"vectors":      vectors,
			"clipped":      clipped,
		})
	case peersRank:
		result, err := normalizer.Compare(ctx, peerSet, metric)
		if err != nil {
			return err
		}
		return printJSON(result)
	default:
		result, err := normalizer.Normalize(ctx, peerSet, metric)
		if err != nil {
			return err
		}
		return printJSON(result)
	}
}
