package command

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/maho-na510/aquarium-visit-log/cmd/cli/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rankingCmd = &cobra.Command{
	Use:     "ranking",
	Aliases: []string{"rank"},
	Short:   "Aquarium leaderboards",
	Long: `Show one of the leaderboards. The first five places are highlighted.

Every board accepts --prefecture and --limit (1-100, default 10).`,
}

// rankingBoard describes one leaderboard subcommand.
type rankingBoard struct {
	use    string
	path   string
	short  string
	flags  func(cmd *cobra.Command)
	metric func(row dto.RankingRow) string
}

var rankingBoards = []rankingBoard{
	{
		use:   "most-visited",
		path:  "most_visited",
		short: "Aquariums with the most visits",
		flags: func(cmd *cobra.Command) {
			cmd.Flags().String("period", "all", "all, year or month")
			cmd.Flags().Int("year", 0, "Year for --period year (default current year)")
		},
		metric: func(row dto.RankingRow) string {
			out := fmt.Sprintf("%d visits", deref(row.VisitCount))
			if row.LatestVisit != nil {
				out += "  last " + *row.LatestVisit
			}
			return out
		},
	},
	{
		use:   "highest-rated",
		path:  "highest_rated",
		short: "Aquariums with the best average rating",
		flags: func(cmd *cobra.Command) {
			cmd.Flags().Int("min-visits", 0, "Minimum number of ratings (server default 3)")
		},
		metric: func(row dto.RankingRow) string {
			return fmt.Sprintf("%s  %d ratings", stars(derefFloat(row.AverageRating)), deref(row.RatingCount))
		},
	},
	{
		use:   "trending",
		path:  "trending",
		short: "Aquariums with the most recent visits",
		flags: func(cmd *cobra.Command) {
			cmd.Flags().Int("days", 0, "Window in days (server default 30)")
		},
		metric: func(row dto.RankingRow) string {
			return fmt.Sprintf("%d recent visits  %s", deref(row.RecentVisitCount), stars(derefFloat(row.AverageRating)))
		},
	},
	{
		use:   "wishlist-champions",
		path:  "wishlist_champions",
		short: "Aquariums on the most wishlists",
		metric: func(row dto.RankingRow) string {
			return fmt.Sprintf("%d wishlists  %d visits", deref(row.WishlistCount), deref(row.VisitCount))
		},
	},
	{
		use:   "hidden-gems",
		path:  "hidden_gems",
		short: "Highly rated aquariums with few visits",
		flags: func(cmd *cobra.Command) {
			cmd.Flags().Float64("min-rating", 0, "Minimum average rating (server default 4.5)")
			cmd.Flags().Int("max-visits", 0, "Maximum visits (server default 10)")
		},
		metric: func(row dto.RankingRow) string {
			return fmt.Sprintf("%s  %d visits", stars(derefFloat(row.AverageRating)), deref(row.VisitCount))
		},
	},
}

// rankingFlags maps CLI flag names to API query parameters.
var rankingFlags = map[string]string{
	"prefecture": "prefecture",
	"limit":      "limit",
	"period":     "period",
	"year":       "year",
	"min-visits": "min_visits",
	"days":       "days",
	"min-rating": "min_rating",
	"max-visits": "max_visits",
}

func newRankingCmd(board rankingBoard) *cobra.Command {
	cmd := &cobra.Command{
		Use:   board.use,
		Short: board.short,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			for flag, param := range rankingFlags {
				f := cmd.Flags().Lookup(flag)
				if f != nil && f.Changed {
					query.Set(param, f.Value.String())
				}
			}

			result, err := GetClient().Ranking(board.path, query)
			if err != nil {
				return fmt.Errorf("failed to get ranking: %w", err)
			}
			printRanking(board, result)
			return nil
		},
	}
	cmd.Flags().String("prefecture", "", "Only this prefecture")
	cmd.Flags().Int("limit", 10, "Number of places")
	if board.flags != nil {
		board.flags(cmd)
	}
	return cmd
}

func printRanking(board rankingBoard, result *dto.RankingResponse) {
	var header []string
	if result.Prefecture != nil {
		header = append(header, *result.Prefecture)
	}
	if result.Period != "" {
		header = append(header, "period "+result.Period)
	}
	if result.Year != nil {
		header = append(header, "year "+strconv.Itoa(*result.Year))
	}
	if result.Days != nil {
		header = append(header, fmt.Sprintf("last %d days", *result.Days))
	}
	color.New(color.Bold).Printf("%s", board.short)
	if len(header) > 0 {
		fmt.Printf(" (%s)", strings.Join(header, ", "))
	}
	fmt.Println()

	if len(result.Rankings) == 0 {
		fmt.Println("No aquariums qualify yet.")
		return
	}

	top := color.New(color.FgYellow, color.Bold)
	for _, row := range result.Rankings {
		line := fmt.Sprintf("%3d. %-30s %-6s %s", row.Rank, row.Name, row.Prefecture, board.metric(row))
		if row.IsTop5 {
			top.Println(line)
			continue
		}
		fmt.Println(line)
	}
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func init() {
	for _, board := range rankingBoards {
		rankingCmd.AddCommand(newRankingCmd(board))
	}
}
