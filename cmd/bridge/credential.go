package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/trello-bridge/internal/credential"
)

// validKeys lists the credential keys the bridge understands.
var validKeys = []string{
	credential.KeyDiscordToken,
	credential.KeyTrelloAPIKey,
	credential.KeyTrelloToken,
}

func newCredentialCmd() *cobra.Command {
	credCmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage stored credentials",
	}

	credCmd.AddCommand(
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: fmt.Sprintf("Store a credential (keys: %v)", validKeys),
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				if !isValidKey(args[0]) {
					return fmt.Errorf("unknown credential key %q (valid: %v)", args[0], validKeys)
				}
				return credential.Set(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "delete <key>",
			Short: "Remove a stored credential",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return credential.Delete(args[0])
			},
		},
	)

	return credCmd
}

func isValidKey(key string) bool {
	for _, k := range validKeys {
		if k == key {
			return true
		}
	}
	return false
}
