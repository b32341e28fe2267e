package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"corral/internal/checklist"
)

var checklistDir string

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "View and update workflow checklists",
}

var checklistViewCmd = &cobra.Command{
	Use:   "view <checklist-id>",
	Short: "Show a checklist's progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := checklist.NewStore(checklistDir)
		c, err := store.Load(args[0])
		if err != nil {
			return err
		}

		done, total := c.Progress()
		fmt.Printf("%s\n", color.CyanString(c.Title))
		if c.Description != "" {
			fmt.Printf("%s\n", c.Description)
		}
		fmt.Printf("Progress: %d/%d\n\n", done, total)

		for _, item := range c.Items {
			mark := "☐"
			if item.Completed {
				mark = color.GreenString("☑")
			}
			fmt.Printf("%s [%s] %s\n", mark, item.ID, item.Description)
			if at, ok := item.Metadata["completed_at"]; ok {
				fmt.Printf("    completed: %s\n", at)
			}
		}
		return nil
	},
}

var checklistCheckCmd = &cobra.Command{
	Use:   "check <checklist-id> <item-id>",
	Short: "Mark a checklist item complete",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := checklist.NewStore(checklistDir)
		if err := store.CheckOff(args[0], args[1], nil); err != nil {
			return err
		}
		fmt.Printf("%s Checked off [%s] in %s\n", color.GreenString("✓"), args[1], args[0])
		return nil
	},
}

var checklistResetCmd = &cobra.Command{
	Use:   "reset <checklist-id>",
	Short: "Uncheck every item of a checklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := checklist.NewStore(checklistDir)
		if err := store.Reset(args[0]); err != nil {
			return err
		}
		fmt.Printf("%s Reset %s\n", color.GreenString("✓"), args[0])
		return nil
	},
}

func init() {
	checklistCmd.PersistentFlags().StringVar(&checklistDir, "dir", "checklists", "Checklist directory")
	checklistCmd.AddCommand(checklistViewCmd)
	checklistCmd.AddCommand(checklistCheckCmd)
	checklistCmd.AddCommand(checklistResetCmd)
}
