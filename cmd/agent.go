package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	agentDescription  string
	agentSystemPrompt string
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage agents and their document collections",
}

var agentCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		agent, err := a.lib.CreateAgent(ctx, args[0], agentDescription, agentSystemPrompt)
		if err != nil {
			return err
		}
		fmt.Printf("Created agent %s (%s)\n", agent.Name, agent.ID)
		return nil
	},
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		agents, err := a.lib.ListAgents(ctx)
		if err != nil {
			return err
		}
		if len(agents) == 0 {
			fmt.Println("No agents yet. Create one with `agentrag agent create <name>`.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
		for _, ag := range agents {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ag.ID, ag.Name, ag.Description)
		}
		return w.Flush()
	},
}

var agentDeleteCmd = &cobra.Command{
	Use:   "delete <agent>",
	Short: "Delete an agent and every document indexed for it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		agent, err := a.resolveAgent(ctx, args[0])
		if err != nil {
			return err
		}
		if err := a.lib.DeleteAgent(ctx, agent.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted agent %s (%s)\n", agent.Name, agent.ID)
		return nil
	},
}

func init() {
	agentCreateCmd.Flags().StringVar(&agentDescription, "description", "", "what the agent is for")
	agentCreateCmd.Flags().StringVar(&agentSystemPrompt, "system-prompt", "", "system prompt stored with the agent")

	agentCmd.AddCommand(agentCreateCmd, agentListCmd, agentDeleteCmd)
	rootCmd.AddCommand(agentCmd)
}
