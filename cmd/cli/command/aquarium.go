package command

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/maho-na510/aquarium-visit-log/cmd/cli/dto"
	apidto "github.com/maho-na510/aquarium-visit-log/internal/api/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var aquariumCmd = &cobra.Command{
	Use:     "aquarium",
	Aliases: []string{"aq"},
	Short:   "Browse aquariums",
	Long:    `List, show, search and find aquariums near a location.`,
}

var listAquariumCmd = &cobra.Command{
	Use:   "list",
	Short: "List aquariums",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		if page, _ := cmd.Flags().GetInt("page"); page > 0 {
			query.Set("page", strconv.Itoa(page))
		}
		if prefecture, _ := cmd.Flags().GetString("prefecture"); prefecture != "" {
			query.Set("prefecture", prefecture)
		}
		if cmd.Flags().Changed("visited") {
			visited, _ := cmd.Flags().GetBool("visited")
			query.Set("visited", strconv.FormatBool(visited))
		}
		if sort, _ := cmd.Flags().GetString("sort"); sort != "" {
			query.Set("sort", sort)
		}

		result, err := GetClient().ListAquariums(query)
		if err != nil {
			return fmt.Errorf("failed to list aquariums: %w", err)
		}
		printAquariumList(result)
		return nil
	},
}

var searchAquariumCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search aquariums by keyword or by a liked exhibit",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		if len(args) == 1 {
			query.Set("q", args[0])
		}
		if exhibit, _ := cmd.Flags().GetString("exhibit"); exhibit != "" {
			query.Set("exhibit", exhibit)
		}
		if page, _ := cmd.Flags().GetInt("page"); page > 0 {
			query.Set("page", strconv.Itoa(page))
		}

		result, err := GetClient().SearchAquariums(query)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		printAquariumList(result)
		return nil
	},
}

var nearbyAquariumCmd = &cobra.Command{
	Use:   "nearby",
	Short: "Find aquariums around a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		distance, _ := cmd.Flags().GetFloat64("distance")

		result, err := GetClient().NearbyAquariums(lat, lng, distance)
		if err != nil {
			return fmt.Errorf("nearby search failed: %w", err)
		}
		printAquariumList(result)
		return nil
	},
}

var showAquariumCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one aquarium with its recent visits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid aquarium ID: %w", err)
		}

		a, err := GetClient().GetAquarium(id)
		if err != nil {
			return fmt.Errorf("failed to get aquarium: %w", err)
		}

		color.New(color.Bold).Printf("%s\n", a.Name)
		fmt.Printf("ID:         %d\n", a.ID)
		fmt.Printf("Address:    %s (%s)\n", a.Address, a.Prefecture)
		fmt.Printf("Location:   %.6f, %.6f\n", a.Latitude, a.Longitude)
		fmt.Printf("Rating:     %s (%d visits)\n", stars(a.AverageRating), a.VisitCount)
		if a.Website != "" {
			fmt.Printf("Website:    %s\n", a.Website)
		}
		if a.PhoneNumber != "" {
			fmt.Printf("Phone:      %s\n", a.PhoneNumber)
		}
		if a.Visited {
			color.Green("✓ You have visited this aquarium")
		}
		if a.InWishlist {
			color.Cyan("★ On your wishlist")
		}
		if a.Description != "" {
			fmt.Printf("\n%s\n", a.Description)
		}

		if len(a.RecentVisits) > 0 {
			fmt.Println("\nRecent visits:")
			for _, v := range a.RecentVisits {
				rating := "-"
				if v.Rating != nil {
					rating = strconv.Itoa(*v.Rating)
				}
				fmt.Printf("  %s  %-20s rating %s  photos %d\n",
					v.VisitedAt.Time().Format("2006-01-02"), v.UserName, rating, v.PhotoCount)
			}
		}
		return nil
	},
}

func init() {
	aquariumCmd.AddCommand(listAquariumCmd, searchAquariumCmd, nearbyAquariumCmd, showAquariumCmd)

	listAquariumCmd.Flags().Int("page", 1, "Page number")
	listAquariumCmd.Flags().String("prefecture", "", "Only this prefecture")
	listAquariumCmd.Flags().Bool("visited", false, "Only aquariums you have (or, with =false, have not) visited")
	listAquariumCmd.Flags().String("sort", "", "rating, visits or prefecture (default name)")

	searchAquariumCmd.Flags().String("exhibit", "", "Aquariums where visitors liked this exhibit")
	searchAquariumCmd.Flags().Int("page", 1, "Page number")

	nearbyAquariumCmd.Flags().Float64("lat", 0, "Latitude")
	nearbyAquariumCmd.Flags().Float64("lng", 0, "Longitude")
	nearbyAquariumCmd.Flags().Float64("distance", 0, "Radius in km (server default 50)")
	nearbyAquariumCmd.MarkFlagRequired("lat")
	nearbyAquariumCmd.MarkFlagRequired("lng")
}

func printAquariumList(result *dto.AquariumList) {
	if len(result.Aquariums) == 0 {
		fmt.Println("No aquariums found.")
		return
	}

	for _, a := range result.Aquariums {
		printAquariumRow(a)
	}
	if p := result.Pagination; p != nil {
		fmt.Printf("\nPage %d/%d (%d total)\n", p.CurrentPage, p.TotalPages, p.TotalCount)
	}
}

func printAquariumRow(a apidto.AquariumIndex) {
	var marks []string
	if a.Visited {
		marks = append(marks, color.GreenString("visited"))
	}
	if a.InWishlist {
		marks = append(marks, color.CyanString("wishlist"))
	}
	distance := ""
	if a.Distance != nil {
		distance = fmt.Sprintf("  %.1f km", *a.Distance)
	}

	fmt.Printf("%4d  %-30s %-6s %s  %d visits%s  %s\n",
		a.ID, a.Name, a.Prefecture, stars(a.AverageRating), a.VisitCount, distance, strings.Join(marks, " "))
}

func stars(rating float64) string {
	if rating <= 0 {
		return "-----"
	}
	full := int(rating + 0.5)
	if full > 5 {
		full = 5
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full) + fmt.Sprintf(" %.2f", rating)
}
