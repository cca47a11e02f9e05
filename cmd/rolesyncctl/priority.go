package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/campuscord/rolesync/pkg/config"
	"github.com/campuscord/rolesync/pkg/roles"
	"github.com/campuscord/rolesync/pkg/store"
)

// priorityCmd represents the priority command
var priorityCmd = &cobra.Command{
	Use:   "priority",
	Short: "Manage the guild's classification priority list",
	Long: `Manage the ordered classification slots used to pick a member's
primary role. Slots are evaluated in order and the first slot with a
matching trigger wins.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'priority' requires a subcommand (show, replace, set-role)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var priorityShowCmd = &cobra.Command{
	Use:   "show <guild>",
	Short: "Show the priority list in evaluation order",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := showPriority(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show priority list: %v\n", err)
			os.Exit(1)
		}
	},
}

var priorityReplaceCmd = &cobra.Command{
	Use:   "replace <guild> [file]",
	Short: "Replace the priority list from a YAML file",
	Long: `Replace the guild's entire priority list with the slots read from a
YAML file, or from stdin when no file is given.

Example file:
  - name: employee
    triggers: [employee, staff]
    role: "198"
  - name: student
    triggers: [student]
    role: "311"`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		source := "-"
		if len(args) == 2 {
			source = args[1]
		}
		if err := replacePriority(args[0], source); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to replace priority list: %v\n", err)
			os.Exit(1)
		}
	},
}

var prioritySetRoleCmd = &cobra.Command{
	Use:   "set-role <guild> <slot> <role>",
	Short: "Set the role granted by a single slot",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := setPriorityRole(args[0], args[1], args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set slot role: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(priorityCmd)
	priorityCmd.AddCommand(priorityShowCmd)
	priorityCmd.AddCommand(priorityReplaceCmd)
	priorityCmd.AddCommand(prioritySetRoleCmd)
}

func showPriority(guildID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	slots, err := s.settings.Priority(context.Background(), guildID)
	if err != nil {
		return err
	}

	fmt.Printf("%-4s %-16s %-16s %s\n", "#", "SLOT", "ROLE", "TRIGGERS")
	for i, slot := range slots {
		fmt.Printf("%-4d %-16s %-16s %s\n", i+1, slot.Name, slot.RoleID, strings.Join(slot.Triggers, ", "))
	}
	return nil
}

func replacePriority(guildID, source string) error {
	var data []byte
	var err error
	if source == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return err
	}

	var slots []roles.Slot
	if err := yaml.Unmarshal(data, &slots); err != nil {
		return fmt.Errorf("parsing priority list: %w", err)
	}
	seen := map[string]bool{}
	for _, slot := range slots {
		if slot.Name == "" {
			return fmt.Errorf("priority slot is missing a name")
		}
		if seen[slot.Name] {
			return fmt.Errorf("duplicate priority slot %q", slot.Name)
		}
		seen[slot.Name] = true
		if len(slot.Triggers) == 0 {
			return fmt.Errorf("priority slot %q has no triggers", slot.Name)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	if err := s.settings.ReplacePriority(context.Background(), guildID, slots); err != nil {
		return err
	}
	fmt.Printf("Replaced priority list with %d slots\n", len(slots))
	return nil
}

func setPriorityRole(guildID, slotName, roleID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	err = s.settings.SetPriorityRole(context.Background(), guildID, slotName, roleID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("slot %q is not in the priority list", slotName)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Slot %s now grants role %s\n", slotName, roleID)
	return nil
}
