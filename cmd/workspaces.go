package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/supplier-cli/internal/store"
)

var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "Manage dataset workspaces",
}

var workspacesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		workspaces, err := st.ListWorkspaces(ctx)
		if err != nil {
			return err
		}
		if len(workspaces) == 0 {
			fmt.Fprintln(os.Stderr, "No workspaces.")
			return nil
		}

		formatWorkspaceList(os.Stdout, workspaces)
		return nil
	},
}

var workspacesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a workspace with its ingestion audit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ws, err := st.GetWorkspaceByName(ctx, args[0])
		if err != nil {
			return err
		}
		if ws == nil {
			return eris.Errorf("workspace not found: %s", args[0])
		}

		ingestion, err := st.GetIngestion(ctx, ws.ID)
		if err != nil {
			return err
		}
		return printJSON(struct {
			Workspace *store.Workspace `json:"workspace"`
			Ingestion any              `json:"ingestion,omitempty"`
		}{ws, ingestion})
	},
}

var workspacesRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a workspace and its dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ws, err := st.GetWorkspaceByName(ctx, args[0])
		if err != nil {
			return err
		}
		if ws == nil {
			return eris.Errorf("workspace not found: %s", args[0])
		}
		if err := st.DeleteWorkspace(ctx, ws.ID); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Deleted workspace %s\n", ws.Name)
		return nil
	},
}

func formatWorkspaceList(out io.Writer, workspaces []store.Workspace) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCASE\tROWS\tUPDATED")
	for _, ws := range workspaces {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			ws.Name, ws.Case, ws.RowCount, ws.UpdatedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func init() {
	workspacesCmd.AddCommand(workspacesListCmd)
	workspacesCmd.AddCommand(workspacesShowCmd)
	workspacesCmd.AddCommand(workspacesRmCmd)
	rootCmd.AddCommand(workspacesCmd)
}
