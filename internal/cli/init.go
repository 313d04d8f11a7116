package cli

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/identity"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate an admin keypair and initialize a fresh ledger",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("generating admin keypair: %w", err)
	}
	var admin host.Address
	copy(admin[:], pub)

	var self host.Address // the contract's own fee-holding account; zero until wired to an escrow
	rt, err := bootstrap(context.Background(), cfg, self)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.contract.Initialize(admin); err != nil {
		return fmt.Errorf("initializing ledger: %w", err)
	}

	fmt.Println("Ledger initialized.")
	fmt.Printf("  Admin address:    %s\n", identity.Derive(admin))
	fmt.Printf("  Admin public key: %s\n", hex.EncodeToString(pub))
	fmt.Printf("  Admin secret key: %s\n", hex.EncodeToString(priv))
	fmt.Println("Store the secret key securely; shaded never persists it.")
	return nil
}
