package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/tuncaytekle/docsync/internal/app"
	"github.com/tuncaytekle/docsync/internal/config"
	"github.com/tuncaytekle/docsync/internal/docsync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// a.Close(). operation identifies the CLI command being run, for log
// correlation.
func newApp(ctx context.Context, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// readPassphrase prompts for a passphrase without echoing it.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(data), nil
}

var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Document library with best-effort remote synchronization",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:       %s\n", cfg.HostID)
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Documents Dir: %s\n", cfg.DocumentsDir)
		fmt.Printf("Remote:        %s\n", cfg.Remote.Type)
		fmt.Printf("Encryption:    %s\n", cfg.Encryption.Type)
		return nil
	},
}

var configEncryptionCmd = &cobra.Command{
	Use:   "encryption",
	Short: "Manage at-rest encryption",
}

var configEncryptionSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate the encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "SetupEncryption")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase for the private key: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupEncryption(passphrase); err != nil {
			return fmt.Errorf("setting up encryption: %w", err)
		}
		fmt.Println("Encryption keys generated. Pushed documents will now be encrypted.")
		return nil
	},
}

// list command

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "List")
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.List(ctx)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No documents.")
			return nil
		}

		folders, err := a.Folders()
		if err != nil {
			return err
		}
		folderNames := make(map[string]string, len(folders))
		for _, f := range folders {
			folderNames[f.ID] = f.Name
		}

		for _, rec := range records {
			pages := "?"
			if rec.PageCount > 0 {
				pages = fmt.Sprintf("%d", rec.PageCount)
			}
			folder := ""
			if name, ok := folderNames[rec.FolderID]; ok {
				folder = "  [" + name + "]"
			}
			fmt.Printf("%-40s  %8d bytes  %3sp  %s%s\n",
				rec.DisplayName, rec.SizeBytes, pages,
				rec.ModifiedAt.Format("2006-01-02 15:04"), folder)
		}
		return nil
	},
}

// import command

var importCmd = &cobra.Command{
	Use:   "import PATH...",
	Short: "Import documents into the library",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Import")
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.Import(ctx, args)
		if err != nil {
			return fmt.Errorf("importing: %w", err)
		}
		for _, rec := range records {
			fmt.Printf("Imported %s\n", rec.Name)
		}
		fmt.Printf("Imported %d document(s)\n", len(records))
		return nil
	},
}

// rename command

var renameCmd = &cobra.Command{
	Use:   "rename NAME NEW_NAME",
	Short: "Rename a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Rename")
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Rename(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Renamed to %s\n", rec.Name)
		return nil
	},
}

// delete command

var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

// folder command

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var folderCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "CreateFolder")
		if err != nil {
			return err
		}
		defer a.Close()

		folder, err := a.CreateFolder(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Created folder %s (%s)\n", folder.Name, folder.ID)
		return nil
	},
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Folders")
		if err != nil {
			return err
		}
		defer a.Close()

		folders, err := a.Folders()
		if err != nil {
			return err
		}
		if len(folders) == 0 {
			fmt.Println("No folders.")
			return nil
		}
		for _, f := range folders {
			fmt.Printf("%s  %s  %s\n", f.ID, f.CreatedAt.Format("2006-01-02"), f.Name)
		}
		return nil
	},
}

var folderRenameCmd = &cobra.Command{
	Use:   "rename FOLDER_ID NEW_NAME",
	Short: "Rename a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "RenameFolder")
		if err != nil {
			return err
		}
		defer a.Close()

		folder, err := a.RenameFolder(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Renamed folder to %s\n", folder.Name)
		return nil
	},
}

var folderDeleteCmd = &cobra.Command{
	Use:   "delete FOLDER_ID",
	Short: "Delete a folder and its documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "DeleteFolder")
		if err != nil {
			return err
		}
		defer a.Close()

		deleted, err := a.DeleteFolder(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Deleted folder and %d document(s)\n", len(deleted))
		return nil
	},
}

var folderAssignCmd = &cobra.Command{
	Use:   "assign NAME [FOLDER_ID]",
	Short: "Assign a document to a folder (omit FOLDER_ID to clear)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "AssignFolder")
		if err != nil {
			return err
		}
		defer a.Close()

		folderID := ""
		if len(args) == 2 {
			folderID = args[1]
		}
		rec, err := a.AssignFolder(ctx, args[0], folderID)
		if err != nil {
			return err
		}
		if folderID == "" {
			fmt.Printf("Cleared folder assignment for %s\n", rec.Name)
		} else {
			fmt.Printf("Assigned %s to folder %s\n", rec.Name, folderID)
		}
		return nil
	},
}

// sync command

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push all documents to the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "SyncAll")
		if err != nil {
			return err
		}
		defer a.Close()

		synced, err := a.SyncAll(ctx)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Printf("Synced %d document(s)\n", synced)
		return nil
	},
}

// pull command

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Restore documents missing locally from the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		unlock, _ := cmd.Flags().GetBool("unlock")

		a, err := newApp(ctx, "Pull")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase := ""
		if unlock {
			passphrase, err = readPassphrase("Passphrase to unlock encrypted documents: ")
			if err != nil {
				return err
			}
		}

		restored, err := a.Pull(ctx, passphrase)
		if err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}
		fmt.Printf("Restored %d document(s)\n", restored)
		return nil
	},
}

// status command

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View per-document sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "Status")
		if err != nil {
			return err
		}
		defer a.Close()

		statuses, remoteState, err := a.Status(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Remote: %s\n\n", remoteState)
		if len(statuses) == 0 {
			fmt.Println("No documents.")
			return nil
		}
		for _, s := range statuses {
			line := fmt.Sprintf("%-12s  %s", s.Status.State, s.Record.Name)
			if s.Status.State == docsync.StateFailed || s.Status.State == docsync.StateUnavailable {
				line += "  (" + s.Status.Reason + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

// history command

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View sync operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(ctx, "History")
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.History(limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No sync operations recorded.")
			return nil
		}
		for _, e := range entries {
			detail := ""
			if e.Detail != "" {
				detail = "  " + e.Detail
			}
			fmt.Printf("#%d  %-13s  %s  %-11s  %s%s\n",
				e.ID, e.Op,
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Outcome, e.Name, detail)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEncryptionCmd)
	configEncryptionCmd.AddCommand(configEncryptionSetupCmd)

	folderCmd.AddCommand(folderCreateCmd)
	folderCmd.AddCommand(folderListCmd)
	folderCmd.AddCommand(folderRenameCmd)
	folderCmd.AddCommand(folderDeleteCmd)
	folderCmd.AddCommand(folderAssignCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(folderCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pullCmd)
	pullCmd.Flags().Bool("unlock", false, "Prompt for a passphrase to restore encrypted documents")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of entries to show")
}
