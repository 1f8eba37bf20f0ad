package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maho-na510/aquarium-visit-log/cmd/cli/dto"

	"github.com/spf13/cobra"
)

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Manage your wishlist",
	Long:  `List the aquariums you want to visit, add new ones or remove them.`,
}

var listWishlistCmd = &cobra.Command{
	Use:   "list",
	Short: "List your wishlist by priority",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")

		result, err := httpClient.GetWishlist(page)
		if err != nil {
			return fmt.Errorf("failed to get wishlist: %w", err)
		}
		if len(result.WishlistItems) == 0 {
			fmt.Println("Your wishlist is empty.")
			return nil
		}

		for _, item := range result.WishlistItems {
			priority := "-"
			if item.Priority != nil {
				priority = strconv.Itoa(*item.Priority)
			}
			fmt.Printf("%4d  [%s] %-30s %-6s %s\n",
				item.ID, priority, item.Aquarium.Name, item.Aquarium.Prefecture, stars(item.Aquarium.AverageRating))
			if item.Memo != "" {
				fmt.Printf("      %s\n", item.Memo)
			}
		}
		if p := result.Pagination; p != nil {
			fmt.Printf("\nPage %d/%d (%d total)\n", p.CurrentPage, p.TotalPages, p.TotalCount)
		}
		return nil
	},
}

var addWishlistCmd = &cobra.Command{
	Use:   "add [aquarium-id]",
	Short: "Add an aquarium to your wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		aquariumID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid aquarium ID: %w", err)
		}
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		var req dto.WishlistRequest
		req.WishlistItem.AquariumID = &aquariumID
		if cmd.Flags().Changed("priority") {
			priority, _ := cmd.Flags().GetInt("priority")
			req.WishlistItem.Priority = &priority
		}
		if memo, _ := cmd.Flags().GetString("memo"); memo != "" {
			req.WishlistItem.Memo = &memo
		}

		item, err := httpClient.AddToWishlist(&req)
		if err != nil {
			return fmt.Errorf("failed to add to wishlist: %w", err)
		}
		fmt.Printf("✓ Added %s to your wishlist (item %d)\n", item.Aquarium.Name, item.ID)
		return nil
	},
}

var removeWishlistCmd = &cobra.Command{
	Use:   "remove [item-id...]",
	Short: "Remove items from your wishlist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		var failed []string
		for _, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				failed = append(failed, arg+": invalid ID")
				continue
			}
			if err := httpClient.RemoveFromWishlist(id); err != nil {
				failed = append(failed, fmt.Sprintf("%d: %v", id, err))
				continue
			}
			fmt.Printf("✓ Removed item %d\n", id)
		}
		if len(failed) > 0 {
			return fmt.Errorf("some items were not removed:\n  %s", strings.Join(failed, "\n  "))
		}
		return nil
	},
}

func init() {
	wishlistCmd.AddCommand(listWishlistCmd, addWishlistCmd, removeWishlistCmd)

	listWishlistCmd.Flags().Int("page", 1, "Page number")

	addWishlistCmd.Flags().Int("priority", 0, "Priority, 1 is highest")
	addWishlistCmd.Flags().String("memo", "", "Note to yourself")
}
