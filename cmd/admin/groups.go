package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/service"
)

func init() {
	RootCmd.AddCommand(createGroupCmd, deleteGroupCmd, listGroupsCmd)
	createGroupCmd.Flags().StringP("title", "t", "", "group title")
	createGroupCmd.Flags().StringP("description", "d", "", "group description")
	createGroupCmd.MarkFlagRequired("title")
}

var createGroupCmd = &cobra.Command{
	Use:   "create-group <slug>",
	Short: "Create a group posts can be filed under",
	Args:  cobra.ExactArgs(1),
	RunE:  createGroup,
}

var deleteGroupCmd = &cobra.Command{
	Use:   "delete-group <slug>",
	Short: "Delete a group; its posts are kept without a group",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteGroup,
}

var listGroupsCmd = &cobra.Command{
	Use:     "list-groups",
	Aliases: []string{"groups"},
	Short:   "List groups",
	Args:    cobra.NoArgs,
	RunE:    listGroups,
}

func groupService() *service.GroupService {
	return service.NewGroupService(db.NewRepository(database.DB))
}

func createGroup(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")

	group, err := groupService().Create(cmd.Context(), title, args[0], description)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created group %s (/group/%s/)\n", group.Title, group.Slug)
	return nil
}

func deleteGroup(cmd *cobra.Command, args []string) error {
	if err := groupService().Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %s\n", args[0])
	return nil
}

func listGroups(cmd *cobra.Command, args []string) error {
	groups, err := groupService().List(cmd.Context())
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No groups")
		return nil
	}
	for _, g := range groups {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", g.Slug, g.Title)
	}
	return nil
}
