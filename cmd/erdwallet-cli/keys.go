package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/Klingon-tech/erdwallet/internal/wallet"
	"github.com/Klingon-tech/erdwallet/pkg/crypto"
	"github.com/Klingon-tech/erdwallet/pkg/types"
)

// ── mnemonic / derive / address / validate ─────────────────────────────

func cmdMnemonic() {
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}
	fmt.Println(mnemonic)
}

func cmdDerive(args []string) {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	index := indexFlag(fs, "index", "Account index")
	fs.Parse(args)

	if *mnemonic == "" {
		fatal("Usage: erdwallet-cli derive --mnemonic \"word1 word2 ...\" [--index N]")
	}
	if !wallet.ValidateMnemonic(*mnemonic) {
		fmt.Fprintln(os.Stderr, "Warning: mnemonic fails the BIP-39 wordlist/checksum check")
	}

	priv, pub, err := wallet.DeriveKeys(*mnemonic, index.v)
	if err != nil {
		fatal("derive keys: %v", err)
	}
	defer zero(priv)

	addr, err := types.AddressFromPubKey(pub)
	if err != nil {
		fatal("address: %v", err)
	}

	fmt.Printf("Path:       %s\n", wallet.DerivationPath(index.v))
	fmt.Printf("PrivateKey: %s\n", hex.EncodeToString(priv))
	fmt.Printf("PublicKey:  %s\n", hex.EncodeToString(pub))
	fmt.Printf("Address:    %s\n", addr)
}

func cmdAddress(args []string) {
	if len(args) != 1 {
		fatal("Usage: erdwallet-cli address <hex|bech32>")
	}
	addr, err := types.ParseAddress(args[0])
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Hex:    %s\n", addr.Hex())
	fmt.Printf("Bech32: %s\n", addr)
}

func cmdValidate(args []string) {
	if len(args) != 1 {
		fatal("Usage: erdwallet-cli validate <bech32>")
	}
	if _, err := types.AddressFromBech32(args[0]); err != nil {
		fmt.Printf("invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("valid")
}

// ── wallet ──────────────────────────────────────────────────────────────

func cmdWallet(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: erdwallet-cli wallet <create|import|list|address> [flags]")
	}

	switch args[0] {
	case "create":
		cmdWalletCreate(e, args[1:])
	case "import":
		cmdWalletImport(e, args[1:])
	case "list":
		cmdWalletList(e)
	case "address":
		cmdWalletAddress(e, args[1:])
	default:
		fatal("Unknown wallet command: %s\nUsage: erdwallet-cli wallet <create|import|list|address> [flags]", args[0])
	}
}

func cmdWalletCreate(e *env, args []string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: erdwallet-cli wallet create --name <name>")
	}

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	createWallet(e, *name, mnemonic)
}

func cmdWalletImport(e *env, args []string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	fs.Parse(args)

	if *name == "" || *mnemonic == "" {
		fatal("Usage: erdwallet-cli wallet import --name <name> --mnemonic \"word1 word2 ...\"")
	}
	if !wallet.ValidateMnemonic(*mnemonic) {
		fatal("invalid mnemonic")
	}

	createWallet(e, *name, *mnemonic)
}

// createWallet seals the mnemonic's seed into a new vault and prints the
// default account.
func createWallet(e *env, name, mnemonic string) {
	password := readNewPassword()
	defer zero(password)

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}
	defer zero(seed)

	ks := e.keystore()
	if err := ks.Create(name, seed, password, wallet.DefaultParams()); err != nil {
		fatal("create wallet: %v", err)
	}

	accounts, err := ks.ListAccounts(name)
	if err != nil || len(accounts) == 0 {
		fatal("read accounts: %v", err)
	}
	fmt.Printf("Wallet saved: %s\n", name)
	fmt.Printf("Address: %s\n", accounts[0].Address)
}

func cmdWalletList(e *env) {
	ks := e.keystore()
	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}
	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}
	for _, name := range names {
		accounts, err := ks.ListAccounts(name)
		if err != nil {
			fmt.Printf("  %s  (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("  %s  (%d accounts)\n", name, len(accounts))
	}
}

func cmdWalletAddress(e *env, args []string) {
	fs := flag.NewFlagSet("wallet address", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	newAcct := fs.Bool("new", false, "Derive the next account")
	index := indexFlag(fs, "index", "Derive the account at this index")
	label := fs.String("label", "", "Label for a derived account")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: erdwallet-cli wallet address --wallet <name> [--new] [--index N] [--label l]")
	}
	ks := e.keystore()

	if *newAcct || index.set {
		idx := index.v
		if *newAcct {
			next, err := ks.NextAccountIndex(*name)
			if err != nil {
				fatal("next account: %v", err)
			}
			idx = next
		}
		lbl := *label
		if lbl == "" {
			lbl = fmt.Sprintf("account %d", idx)
		}

		password, err := readPassword("Enter password: ")
		if err != nil {
			fatal("read password: %v", err)
		}
		defer zero(password)

		entry, err := ks.DeriveAccount(*name, password, idx, lbl)
		if err != nil {
			fatal("derive account: %v", err)
		}
		fmt.Printf("%d  %s  %s\n", entry.Index, entry.Address, entry.Name)
		return
	}

	accounts, err := ks.ListAccounts(*name)
	if err != nil {
		fatal("list accounts: %v", err)
	}
	for _, a := range accounts {
		fmt.Printf("%d  %s  %s\n", a.Index, a.Address, a.Name)
	}
}

// unlockAccount prompts for the vault password and returns the signing
// seed of one account. The caller zeroes it.
func unlockAccount(e *env, name string, index uint32) []byte {
	password, err := readPassword("Wallet password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	defer zero(password)

	seed, err := e.keystore().Load(name, password)
	if err != nil {
		fatal("load wallet: %v", err)
	}
	defer zero(seed)

	priv, _, err := wallet.DeriveKeysFromSeed(seed, index)
	if err != nil {
		fatal("derive account %d: %v", index, err)
	}
	return priv
}

// ── keyfile ─────────────────────────────────────────────────────────────

func cmdKeyFile(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: erdwallet-cli keyfile <export|show> [flags]")
	}
	switch args[0] {
	case "export":
		cmdKeyFileExport(e, args[1:])
	case "show":
		cmdKeyFileShow(args[1:])
	default:
		fatal("Unknown keyfile command: %s", args[0])
	}
}

func cmdKeyFileExport(e *env, args []string) {
	fs := flag.NewFlagSet("keyfile export", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	index := indexFlag(fs, "index", "Account index")
	out := fs.String("out", "", "Output file")
	fs.Parse(args)

	if *name == "" || *out == "" {
		fatal("Usage: erdwallet-cli keyfile export --wallet <name> [--index N] --out <file.json>")
	}

	priv := unlockAccount(e, *name, index.v)
	defer zero(priv)

	fmt.Fprintln(os.Stderr, "Choose a password for the key file.")
	password := readNewPassword()
	defer zero(password)

	kf, err := wallet.SaveKeyFile(*out, priv, string(password))
	if err != nil {
		fatal("write key file: %v", err)
	}
	fmt.Printf("Exported %s to %s\n", kf.Bech32, *out)
}

func cmdKeyFileShow(args []string) {
	fs := flag.NewFlagSet("keyfile show", flag.ExitOnError)
	verify := fs.Bool("verify", false, "Decrypt to check the password")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fatal("Usage: erdwallet-cli keyfile show [--verify] <file.json>")
	}
	path := fs.Arg(0)

	kf, err := wallet.ReadKeyFile(path)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("ID:      %s\n", kf.ID)
	fmt.Printf("Address: %s\n", kf.Bech32)
	fmt.Printf("PubKey:  %s\n", kf.Address)

	if *verify {
		password, err := readPassword("Key file password: ")
		if err != nil {
			fatal("read password: %v", err)
		}
		defer zero(password)
		seed, err := kf.Decrypt(string(password))
		if err != nil {
			fatal("%v", err)
		}
		zero(seed)
		fmt.Println("Password OK")
	}
}

// ── pem ─────────────────────────────────────────────────────────────────

func cmdPEM(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: erdwallet-cli pem <export|show> [flags]")
	}
	switch args[0] {
	case "export":
		cmdPEMExport(e, args[1:])
	case "show":
		cmdPEMShow(args[1:])
	default:
		fatal("Unknown pem command: %s", args[0])
	}
}

func cmdPEMExport(e *env, args []string) {
	fs := flag.NewFlagSet("pem export", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	index := indexFlag(fs, "index", "Account index")
	out := fs.String("out", "", "Output file")
	fs.Parse(args)

	if *name == "" || *out == "" {
		fatal("Usage: erdwallet-cli pem export --wallet <name> [--index N] --out <file.pem>")
	}

	priv := unlockAccount(e, *name, index.v)
	defer zero(priv)

	if err := wallet.SavePEM(*out, priv); err != nil {
		fatal("write pem: %v", err)
	}
	addr, _ := crypto.AddressFromSeed(priv)
	fmt.Printf("Exported %s to %s\n", addr, *out)
	fmt.Fprintln(os.Stderr, "Warning: PEM files are not encrypted.")
}

func cmdPEMShow(args []string) {
	fs := flag.NewFlagSet("pem show", flag.ExitOnError)
	index := fs.Int("index", 0, "Key index within the file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fatal("Usage: erdwallet-cli pem show [--index N] <file.pem>")
	}

	seed, err := wallet.LoadPEM(fs.Arg(0), *index)
	if err != nil {
		fatal("%v", err)
	}
	defer zero(seed)

	addr, err := crypto.AddressFromSeed(seed)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Address: %s\n", addr)
	fmt.Printf("PubKey:  %s\n", addr.Hex())
}
