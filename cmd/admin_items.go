package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/storefront/internal/imaging"
	"github.com/marcus/storefront/internal/models"
	"github.com/marcus/storefront/internal/output"
)

var itemsCmd = &cobra.Command{
	Use:     "items",
	Aliases: []string{"item"},
	Short:   "Manage menu items",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every menu item, including unavailable ones",
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		items := sess.store.MenuItems()
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(items)
		}
		width := output.TerminalWidth(0)
		for _, it := range items {
			fmt.Println(output.FormatMenuItemShort(it, width))
		}
		return nil
	}),
}

var itemsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a menu item",
	Args:  cobra.ExactArgs(1),
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		it, ok := sess.store.MenuItem(args[0])
		if !ok {
			return fmt.Errorf("menu item %s not found", args[0])
		}
		fmt.Print(output.FormatMenuItemLong(it))
		return nil
	}),
}

var itemsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a menu item",
	Example: `  storefront admin items add --name "Flat White" --price 3.5 --category cafe
  storefront admin items add --name Croissant --price 2.25 --category bakery --image croissant.png --featured`,
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		f := cmd.Flags()
		var it models.MenuItem
		it.Name, _ = f.GetString("name")
		it.Description, _ = f.GetString("description")
		it.Price, _ = f.GetFloat64("price")
		it.Category, _ = f.GetString("category")
		it.Available, _ = f.GetBool("available")
		it.Featured, _ = f.GetBool("featured")
		if path, _ := f.GetString("image"); path != "" {
			img, err := readImage(path, imaging.Product)
			if err != nil {
				return err
			}
			it.Image = img
		}

		id, err := sess.store.AddMenuItem(cmd.Context(), it)
		if err != nil {
			return err
		}
		sess.store.Wait()
		if added, ok := sess.store.MenuItem(id); ok {
			id = added.ID
		} else if saved := findItemByName(sess, it.Name); saved != "" {
			id = saved
		}
		output.Success("Added %s (%s)", it.Name, id)
		warnOffline(sess)
		return nil
	}),
}

// findItemByName locates an item after its temporary id was replaced.
func findItemByName(sess *session, name string) string {
	items := sess.store.MenuItems()
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Name == name {
			return items[i].ID
		}
	}
	return ""
}

var itemsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit fields of a menu item",
	Args:  cobra.ExactArgs(1),
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		f := cmd.Flags()
		var p models.MenuItemPatch
		if changed(f, "name") {
			v, _ := f.GetString("name")
			p.Name = &v
		}
		if changed(f, "description") {
			v, _ := f.GetString("description")
			p.Description = &v
		}
		if changed(f, "price") {
			v, _ := f.GetFloat64("price")
			p.Price = &v
		}
		if changed(f, "category") {
			v, _ := f.GetString("category")
			p.Category = &v
		}
		if changed(f, "available") {
			v, _ := f.GetBool("available")
			p.Available = &v
		}
		if changed(f, "featured") {
			v, _ := f.GetBool("featured")
			p.Featured = &v
		}
		if p.IsEmpty() {
			return fmt.Errorf("no fields to update")
		}
		if err := sess.store.UpdateMenuItem(cmd.Context(), args[0], p); err != nil {
			return err
		}
		output.Success("Updated %s", args[0])
		warnOffline(sess)
		return nil
	}),
}

var itemsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Toggle whether an item is available",
	Args:  cobra.ExactArgs(1),
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		if err := sess.store.ToggleAvailable(cmd.Context(), args[0]); err != nil {
			return err
		}
		it, _ := sess.store.MenuItem(args[0])
		output.Success("%s is now %s", it.Name, map[bool]string{true: "available", false: "unavailable"}[it.Available])
		warnOffline(sess)
		return nil
	}),
}

var itemsFeatureCmd = &cobra.Command{
	Use:   "feature <id>",
	Short: "Toggle whether an item is featured on the home page",
	Args:  cobra.ExactArgs(1),
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		if err := sess.store.ToggleFeatured(cmd.Context(), args[0]); err != nil {
			return err
		}
		it, _ := sess.store.MenuItem(args[0])
		if it.Featured {
			output.Success("%s is now featured", it.Name)
		} else {
			output.Success("%s is no longer featured", it.Name)
		}
		warnOffline(sess)
		return nil
	}),
}

var itemsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a menu item",
	Args:    cobra.ExactArgs(1),
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		it, ok := sess.store.MenuItem(args[0])
		if !ok {
			return fmt.Errorf("menu item %s not found", args[0])
		}
		if ok, err := confirm(cmd, fmt.Sprintf("Delete %s?", it.Name)); err != nil || !ok {
			return err
		}
		if err := sess.store.DeleteMenuItem(cmd.Context(), it.ID); err != nil {
			return err
		}
		output.Success("Deleted %s", it.Name)
		warnOffline(sess)
		return nil
	}),
}

var itemsImageCmd = &cobra.Command{
	Use:   "image <id> <file>",
	Short: "Set a menu item's photo (resized to 800x600)",
	Args:  cobra.ExactArgs(2),
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		img, err := readImage(args[1], imaging.Product)
		if err != nil {
			return err
		}
		if err := sess.store.UpdateMenuItem(cmd.Context(), args[0], models.MenuItemPatch{Image: &img}); err != nil {
			return err
		}
		output.Success("Updated image of %s (%d bytes encoded)", args[0], len(img))
		warnOffline(sess)
		return nil
	}),
}

func init() {
	itemsListCmd.Flags().Bool("json", false, "JSON output")

	for _, c := range []*cobra.Command{itemsAddCmd, itemsEditCmd} {
		c.Flags().String("name", "", "Item name")
		c.Flags().String("description", "", "Description")
		c.Flags().Float64("price", 0, "Price")
		c.Flags().String("category", "", "Category id")
		c.Flags().Bool("available", true, "Available for order")
		c.Flags().Bool("featured", false, "Show on the home page")
	}
	itemsAddCmd.Flags().String("image", "", "Photo file to attach")
	itemsDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	itemsCmd.AddCommand(itemsListCmd, itemsShowCmd, itemsAddCmd, itemsEditCmd,
		itemsToggleCmd, itemsFeatureCmd, itemsDeleteCmd, itemsImageCmd)
	adminCmd.AddCommand(itemsCmd)
}
